package preintegration

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/preintegration/utils"
)

// NoiseConfig describes the inertial measurement noise, either as per-axis discrete variances or
// as continuous noise densities together with the sample rate.
type NoiseConfig struct {
	// Discrete per-axis variances, in (rad/s)^2 and (m/s^2)^2.
	GyroVariance  []float64 `json:"gyro_variance,omitempty"`
	AccelVariance []float64 `json:"accel_variance,omitempty"`

	// Continuous noise densities, in rad/s/sqrt(Hz) and m/s^2/sqrt(Hz), as found on datasheets.
	GyroNoiseDensity  float64 `json:"gyro_noise_density,omitempty"`
	AccelNoiseDensity float64 `json:"accel_noise_density,omitempty"`
	SampleRateHz      float64 `json:"sample_rate_hz,omitempty"`
}

// NoiseConfigFromAttributes decodes a NoiseConfig from a generic attribute map, such as a section of
// a JSON config file.
func NoiseConfigFromAttributes(attributes map[string]interface{}) (*NoiseConfig, error) {
	var conf NoiseConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &conf})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *NoiseConfig) Validate(path string) error {
	usesVariance := cfg.GyroVariance != nil || cfg.AccelVariance != nil
	usesDensity := cfg.GyroNoiseDensity != 0 || cfg.AccelNoiseDensity != 0 || cfg.SampleRateHz != 0

	switch {
	case usesVariance && usesDensity:
		return utils.NewConfigValidationError(path,
			errors.New("specify either per-axis variances or noise densities with a sample rate, not both"))
	case usesVariance:
		return multierr.Combine(
			validateVariance(path, "gyro_variance", cfg.GyroVariance),
			validateVariance(path, "accel_variance", cfg.AccelVariance),
		)
	case usesDensity:
		return multierr.Combine(
			validatePositive(path, "gyro_noise_density", cfg.GyroNoiseDensity),
			validatePositive(path, "accel_noise_density", cfg.AccelNoiseDensity),
			validatePositive(path, "sample_rate_hz", cfg.SampleRateHz),
		)
	default:
		return utils.NewConfigValidationError(path, errors.New("no noise parameters given"))
	}
}

// NoiseModel validates the config and builds the discrete noise model it describes. Densities are
// discretized as sigma^2 = density^2 * rate.
func (cfg *NoiseConfig) NoiseModel() (*NoiseModel, error) {
	if err := cfg.Validate("noise"); err != nil {
		return nil, err
	}
	if cfg.GyroVariance != nil {
		return NewDiagonalNoiseModel(sliceToR3(cfg.GyroVariance), sliceToR3(cfg.AccelVariance))
	}
	g := utils.Square(cfg.GyroNoiseDensity) * cfg.SampleRateHz
	a := utils.Square(cfg.AccelNoiseDensity) * cfg.SampleRateHz
	return NewDiagonalNoiseModel(r3.Vector{X: g, Y: g, Z: g}, r3.Vector{X: a, Y: a, Z: a})
}

func validateVariance(path, field string, variance []float64) error {
	if variance == nil {
		return utils.NewConfigValidationFieldRequiredError(path, field)
	}
	if len(variance) != 3 {
		return utils.NewConfigValidationError(path, errors.Errorf("%q must have 3 entries, got %d", field, len(variance)))
	}
	for _, v := range variance {
		if !utils.IsFinite(v) || v < 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("%q entries must be finite and non-negative, got %v", field, v))
		}
	}
	return nil
}

func validatePositive(path, field string, value float64) error {
	if value == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, field)
	}
	if !utils.IsFinite(value) || value < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("%q must be positive, got %v", field, value))
	}
	return nil
}

func sliceToR3(s []float64) r3.Vector {
	return r3.Vector{X: s[0], Y: s[1], Z: s[2]}
}

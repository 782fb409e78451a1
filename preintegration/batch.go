package preintegration

import (
	"context"
	"runtime"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/preintegration/spatialmath"
)

// Measurement is one bias-corrected inertial sample, taken at the start of an interval of length Dt.
type Measurement struct {
	AngularVelocity    spatialmath.AngularVelocity
	LinearAcceleration r3.Vector
	Dt                 float64
}

// UpdateAll integrates the measurements in order. It stops at the first rejected measurement; the
// ones before it stay integrated.
func (s *State) UpdateAll(measurements []Measurement) error {
	for i, m := range measurements {
		if err := s.Update(m.AngularVelocity.R3(), m.LinearAcceleration, m.Dt); err != nil {
			return errors.Wrapf(err, "measurement %d", i)
		}
	}
	return nil
}

// IntegrateIntervals preintegrates each interval into its own state, for instance one per pair of
// consecutive keyframes. Intervals are integrated concurrently; the first failure cancels the rest.
func IntegrateIntervals(
	ctx context.Context,
	noise *NoiseModel,
	logger golog.Logger,
	intervals [][]Measurement,
) ([]*State, error) {
	states := make([]*State, len(intervals))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, interval := range intervals {
		i, interval := i, interval
		g.Go(func() error {
			s, err := NewState(noise, logger)
			if err != nil {
				return err
			}
			for j, m := range interval {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.Update(m.AngularVelocity.R3(), m.LinearAcceleration, m.Dt); err != nil {
					return errors.Wrapf(err, "interval %d measurement %d", i, j)
				}
			}
			states[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

package scene

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/retain3d/internal/logger"
)

// Loop runs frames until ticks is closed or ctx is done. Updates run on a
// separate goroutine; every draw runs on the calling goroutine, which must
// be the one owning the graphics API.
//
// The two goroutines hand the scene back and forth over channels: a frame
// is drawn only after its update finished, and the next update starts only
// after that draw returned. Each hand-off orders all scene writes before
// the other side's reads.
//
// Loop returns ctx.Err() when cancelled and nil when ticks is closed.
func (s *Scene) Loop(ctx context.Context, ticks <-chan time.Time) error {
	updated := make(chan struct{})
	drawn := make(chan struct{}, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(updated)
		for {
			var now time.Time
			select {
			case <-gctx.Done():
				return gctx.Err()
			case t, ok := <-ticks:
				if !ok {
					return nil
				}
				now = t
			}

			if dt, ok := s.Tick(now); ok {
				if err := s.Update(dt); err != nil {
					logger.Warn("update finished with errors", zap.Stringer("scene", s.ID), zap.Error(err))
				}
			}

			select {
			case updated <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case <-drawn:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for range updated {
		// Errors are logged by Draw; a failed node does not stop the loop.
		_, _ = s.Draw()
		drawn <- struct{}{}
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ctx.Err()
	}
	return err
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the background engines — order re-check, stop-loss
// monitor, loss-alert scan, tick simulator — each on its own ticker. Cycles
// are fault-isolated: a failed cycle is logged and the loop keeps going.
// Cancelling the context lets in-flight cycles finish; Wait blocks until
// every loop has drained.
type Scheduler struct {
	Logger *zap.Logger
	wg     sync.WaitGroup
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{Logger: logger}
}

// Every starts a named loop invoking task once per interval until ctx is
// cancelled.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.Logger.Info("task started", zap.String("task", name), zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				s.Logger.Info("task stopped", zap.String("task", name))
				return
			case <-ticker.C:
				if err := task(ctx); err != nil {
					s.Logger.Warn("task cycle failed", zap.String("task", name), zap.Error(err))
				}
			}
		}
	}()
}

// Wait blocks until all loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

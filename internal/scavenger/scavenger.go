// Package scavenger runs the periodic sweep that evicts broker instances
// whose heartbeat has expired, modeled on the teacher's ticker-driven
// background workers (pkg/content/cache.AutoFlushWriteCache).
package scavenger

import (
	"sync"
	"time"

	"github.com/rocketmq-go/namesrv/internal/logger"
	"github.com/rocketmq-go/namesrv/internal/rim"
)

// Scavenger periodically calls rim.RIM.ScanNotActiveBroker. Start is
// idempotent; Stop waits for the worker's current cycle to finish before
// returning.
type Scavenger struct {
	rim      *rim.RIM
	interval time.Duration

	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Scavenger that sweeps r every interval once started.
func New(r *rim.RIM, interval time.Duration) *Scavenger {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &Scavenger{
		rim:      r,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep. Calling it more than once has no
// effect.
func (s *Scavenger) Start() {
	s.startOnce.Do(func() {
		logger.Info("starting broker scavenger", "interval", s.interval.String())
		go s.worker()
	})
}

// Stop gracefully stops the sweep, waiting for the current cycle to
// finish. Calling it more than once has no effect.
func (s *Scavenger) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *Scavenger) worker() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scavenger) sweep() {
	evicted := s.rim.ScanNotActiveBroker()
	if evicted > 0 {
		logger.Info("scavenger evicted inactive brokers", "count", evicted)
	}
}

package wmbuspipe

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"vawter.tech/stopper"
)

// Pipeline holds the two child handles of one supervisor run. It is shared
// by the read loop and the Coordinator; the loop only reads handles, the
// Coordinator is the only party that kills them.
type Pipeline struct {
	mu       sync.Mutex
	producer Handle
	consumer Handle
}

// Producer returns the producer handle, nil before launch
func (p *Pipeline) Producer() Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.producer
}

// Consumer returns the consumer handle, nil before launch
func (p *Pipeline) Consumer() Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consumer
}

func (p *Pipeline) setProducer(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producer = h
}

func (p *Pipeline) setConsumer(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consumer = h
}

// Running reports whether both children exist and are running
func (p *Pipeline) Running() bool {
	producer, consumer := p.Producer(), p.Consumer()
	return producer != nil && consumer != nil && producer.Running() && consumer.Running()
}

// Coordinator tears a Pipeline down: consumer first, then producer, each
// killed and reaped before the next. The producer holds the write end of
// the pipe the consumer reads, so killing it first could leave the consumer
// blocked.
type Coordinator struct {
	pipeline *Pipeline
	log      *zap.Logger

	// mu serializes teardowns; a second caller finds exited handles
	mu sync.Mutex
}

// NewCoordinator creates a Coordinator for p
func NewCoordinator(p *Pipeline, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{pipeline: p, log: log}
}

// Terminate kills and reaps the consumer, then the producer. Missing
// handles are skipped and exited handles are no-ops, so Terminate may be
// called any number of times from any goroutine. Waits are unbounded.
func (c *Coordinator) Terminate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	merr := &MultiError{}
	merr.Add(c.stop(RoleConsumer, c.pipeline.Consumer()))
	merr.Add(c.stop(RoleProducer, c.pipeline.Producer()))
	return merr.Err()
}

func (c *Coordinator) stop(role Role, h Handle) error {
	if h == nil {
		return nil
	}

	wasRunning := h.Running()
	if err := h.Kill(); err != nil {
		c.log.Warn("kill failed", zap.Stringer("role", role), zap.Int("pid", h.PID()), zap.Error(err))
		return err
	}

	status, err := h.Wait(context.Background())
	if err != nil {
		return err
	}

	if wasRunning {
		c.log.Info("child terminated",
			zap.Stringer("role", role),
			zap.Int("pid", h.PID()),
			zap.Stringer("status", status),
		)
	}
	return nil
}

// watch runs the interrupt listener on sctx. Every signal received on sigs
// tears the pipeline down and then calls cancel, so the read loop stops on
// its next check without killing anything itself.
func (c *Coordinator) watch(sctx *stopper.Context, sigs <-chan os.Signal, cancel context.CancelFunc) {
	sctx.Go(func(sctx *stopper.Context) error {
		for {
			select {
			case <-sctx.Stopping():
				return nil
			case sig := <-sigs:
				c.log.Info("interrupt received, terminating pipeline", zap.Stringer("signal", sig))
				if err := c.Terminate(); err != nil {
					c.log.Warn("pipeline teardown incomplete", zap.Error(err))
				}
				cancel()
			}
		}
	})
}

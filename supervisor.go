package wmbuspipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"vawter.tech/stopper"
)

// Supervisor runs the producer | consumer pipeline and forwards telegram
// lines from the consumer to its output. A Supervisor can be run more than
// once, but not concurrently.
type Supervisor struct {
	producer    LaunchSpec
	consumer    LaunchSpec
	launcher    Launcher
	elevator    Elevator
	out         io.Writer
	log         *zap.Logger
	metrics     *Metrics
	metricsFile string
	window      time.Duration
	onRate      func(RateSample)
	reportRate  bool
	now         func() time.Time
	stopGrace   time.Duration

	signals    []os.Signal
	notify     func(c chan<- os.Signal, sig ...os.Signal)
	stopNotify func(c chan<- os.Signal)
}

// Option configures a Supervisor
type Option func(*Supervisor)

// WithProducer sets the producer executable and arguments. Its standard
// streams are always stdin discarded, stdout captured, stderr discarded.
func WithProducer(path string, args ...string) Option {
	return func(s *Supervisor) {
		s.producer.Path = path
		s.producer.Args = args
	}
}

// WithConsumer sets the consumer executable and arguments. Its stdin is
// always the producer's stdout; stdout is captured and stderr discarded.
func WithConsumer(path string, args ...string) Option {
	return func(s *Supervisor) {
		s.consumer.Path = path
		s.consumer.Args = args
	}
}

// WithLauncher sets how child processes are created
func WithLauncher(l Launcher) Option {
	return func(s *Supervisor) {
		s.launcher = l
	}
}

// WithElevator sets how scheduling priority is raised; NopElevator
// disables elevation
func WithElevator(e Elevator) Option {
	return func(s *Supervisor) {
		s.elevator = e
	}
}

// WithOutput sets the sink for matching lines
func WithOutput(w io.Writer) Option {
	return func(s *Supervisor) {
		s.out = w
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Supervisor) {
		s.log = log
	}
}

// WithMetrics records pipeline metrics in m
func WithMetrics(m *Metrics) Option {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

// WithMetricsFile writes the metrics in text format to path after every
// rate window and once more at shutdown
func WithMetricsFile(path string) Option {
	return func(s *Supervisor) {
		s.metricsFile = path
	}
}

// WithRateWindow sets the rate window length
func WithRateWindow(d time.Duration) Option {
	return func(s *Supervisor) {
		s.window = d
	}
}

// WithRateHook calls fn with every completed rate window
func WithRateHook(fn func(RateSample)) Option {
	return func(s *Supervisor) {
		s.onRate = fn
	}
}

// WithRateReport logs completed rate windows at info level
func WithRateReport(enabled bool) Option {
	return func(s *Supervisor) {
		s.reportRate = enabled
	}
}

// WithClock sets the time source used for line timestamps and the rate window
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// WithSignals sets the signals that trigger a teardown. With no signals
// the supervisor only stops on child exit or context cancellation.
func WithSignals(sigs ...os.Signal) Option {
	return func(s *Supervisor) {
		s.signals = sigs
	}
}

// WithSignalNotifier replaces signal.Notify and signal.Stop
func WithSignalNotifier(notify func(c chan<- os.Signal, sig ...os.Signal), stop func(c chan<- os.Signal)) Option {
	return func(s *Supervisor) {
		s.notify = notify
		s.stopNotify = stop
	}
}

// New creates a Supervisor for the default rtl_sdr | rtl_wmbus pipeline
func New(opts ...Option) *Supervisor {
	cfg := Default()
	s := &Supervisor{
		producer:   cfg.ProducerSpec(),
		consumer:   cfg.ConsumerSpec(),
		launcher:   ExecLauncher{},
		elevator:   DefaultElevator,
		out:        os.Stdout,
		log:        zap.NewNop(),
		metrics:    NewMetrics(),
		window:     DefaultRateWindow,
		now:        time.Now,
		stopGrace:  DefaultStopGrace,
		signals:    []os.Signal{os.Interrupt},
		notify:     signal.Notify,
		stopNotify: signal.Stop,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewFromConfig creates a Supervisor from cfg; opts are applied after it
func NewFromConfig(cfg Config, opts ...Option) *Supervisor {
	base := []Option{
		WithProducer(cfg.ProducerPath, cfg.ProducerArgs()...),
		WithConsumer(cfg.ConsumerPath, cfg.ConsumerArgs...),
		WithRateWindow(cfg.RateWindow),
		WithRateReport(cfg.ReportRate),
		WithMetricsFile(cfg.MetricsFile),
	}
	if !cfg.Realtime {
		base = append(base, WithElevator(NopElevator))
	}
	return New(append(base, opts...)...)
}

// Metrics returns the collectors the supervisor records into
func (s *Supervisor) Metrics() *Metrics {
	return s.metrics
}

// Run launches the pipeline and forwards telegram lines until either child
// exits, an interrupt arrives, or ctx is cancelled. All of these are a clean
// shutdown and return nil. A launch failure, an output write failure or a
// panic during setup or the loop returns an error. Both children are killed
// and reaped before Run returns, whatever the outcome.
func (s *Supervisor) Run(ctx context.Context) (err error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline := &Pipeline{}
	coord := NewCoordinator(pipeline, s.log)
	sctx := stopper.WithContext(runCtx)

	sigs := make(chan os.Signal, 1)
	if len(s.signals) > 0 {
		s.notify(sigs, s.signals...)
		defer s.stopNotify(sigs)
	}
	coord.watch(sctx, sigs, cancel)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnhandled, r)
		}
		s.teardown(coord, pipeline, sctx)
		if err != nil {
			s.log.Error("pipeline failed", zap.Error(err))
		}
	}()

	if err := s.start(runCtx, pipeline); err != nil {
		return err
	}
	if runCtx.Err() != nil {
		return nil
	}

	return s.loop(runCtx, sctx, pipeline)
}

func (s *Supervisor) producerSpec() LaunchSpec {
	spec := s.producer
	spec.Role = RoleProducer
	spec.Stdin = nil
	spec.Stdout = StreamCapture
	spec.Stderr = StreamDiscard
	return spec
}

func (s *Supervisor) consumerSpec(stdin *os.File) LaunchSpec {
	spec := s.consumer
	spec.Role = RoleConsumer
	spec.Stdin = stdin
	spec.Stdout = StreamCapture
	spec.Stderr = StreamDiscard
	return spec
}

func (s *Supervisor) launch(spec LaunchSpec) (Handle, error) {
	h, err := s.launcher.Launch(spec)
	if err != nil {
		if !errors.Is(err, ErrLaunch) {
			err = &OpError{Op: OpLaunch, Role: spec.Role, Path: spec.Path, Err: err}
		}
		return nil, err
	}

	s.metrics.SetRunning(spec.Role, true)
	s.log.Info("child started",
		zap.Stringer("role", spec.Role),
		zap.String("path", spec.Path),
		zap.Strings("args", spec.Args),
		zap.Int("pid", h.PID()),
	)
	return h, nil
}

// start launches and wires both children. A cancelled ctx stops setup
// early; whatever was launched is left for teardown.
func (s *Supervisor) start(ctx context.Context, p *Pipeline) error {
	producer, err := s.launch(s.producerSpec())
	if err != nil {
		return err
	}
	p.setProducer(producer)
	elevateBestEffort(s.elevator, s.log, RoleProducer, producer.PID())

	if ctx.Err() != nil {
		return nil
	}

	consumer, err := s.launch(s.consumerSpec(producer.Stdout()))
	if err != nil {
		return err
	}
	p.setConsumer(consumer)

	// The consumer holds its own copy now. Dropping ours lets the producer
	// see a broken pipe once the consumer is gone.
	if err := producer.ReleaseStdout(); err != nil {
		s.log.Debug("releasing producer output", zap.Error(err))
	}

	elevateBestEffort(s.elevator, s.log, RoleConsumer, consumer.PID())
	elevateBestEffort(s.elevator, s.log, RoleSelf, SelfPID)

	return nil
}

// loop forwards consumer lines while both children run. Liveness and
// cancellation are checked before every wait for a line, and a dead child
// ends the loop without another read.
func (s *Supervisor) loop(ctx context.Context, sctx *stopper.Context, p *Pipeline) error {
	producer, consumer := p.Producer(), p.Consumer()

	stdout := consumer.Stdout()
	if stdout == nil {
		return &OpError{Op: OpRead, Role: RoleConsumer, PID: consumer.PID(), Err: errors.New("output not captured")}
	}

	lines := make(chan lineResult)
	readLines(sctx, stdout, lines)

	filter := NewFilter(s.out, s.window, s.now(),
		WithFilterMetrics(s.metrics),
		WithFilterLogger(s.log),
		WithFilterRateHook(s.rateHook),
		WithFilterRateReport(s.reportRate),
	)

	for {
		if ctx.Err() != nil {
			s.log.Info("pipeline stopping", zap.String("reason", "cancelled"))
			return nil
		}
		if !producer.Running() || !consumer.Running() {
			s.log.Info("pipeline stopping",
				zap.String("reason", "child exited"),
				zap.Stringer("producer", producer.State()),
				zap.Stringer("consumer", consumer.State()),
			)
			return nil
		}

		var res lineResult
		select {
		case <-ctx.Done():
			continue
		case <-producer.Done():
			continue
		case <-consumer.Done():
			continue
		case res = <-lines:
		}

		if res.err != nil {
			if !errors.Is(res.err, io.EOF) {
				s.log.Debug("consumer output unreadable",
					zap.Error(&OpError{Op: OpRead, Role: RoleConsumer, PID: consumer.PID(), Err: res.err}))
			}
			s.log.Info("pipeline stopping", zap.String("reason", "consumer output closed"))
			return nil
		}

		if _, err := filter.Process(res.text, s.now()); err != nil {
			return err
		}
	}
}

func (s *Supervisor) rateHook(sample RateSample) {
	s.writeMetrics()
	if s.onRate != nil {
		s.onRate(sample)
	}
}

func (s *Supervisor) writeMetrics() {
	if s.metricsFile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.metricsFile); err != nil {
		s.log.Warn("metrics textfile not written", zap.String("path", s.metricsFile), zap.Error(err))
	}
}

// teardown converges every exit path: kill and reap both children, close
// our ends of their output, stop background goroutines.
func (s *Supervisor) teardown(coord *Coordinator, p *Pipeline, sctx *stopper.Context) {
	if err := coord.Terminate(); err != nil {
		s.log.Warn("pipeline teardown incomplete", zap.Error(err))
	}

	release := func(role Role, h Handle) {
		if h == nil {
			return
		}
		_ = h.ReleaseStdout()
		s.metrics.SetRunning(role, h.Running())
	}
	release(RoleConsumer, p.Consumer())
	release(RoleProducer, p.Producer())

	sctx.Stop(s.stopGrace)
	if err := sctx.Wait(); err != nil {
		s.log.Debug("background goroutines", zap.Error(err))
	}

	s.writeMetrics()
}

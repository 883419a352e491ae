package wmbuspipe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

// eventLog records lifecycle transitions of fake handles in order
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// fakeHandle is a Handle whose process is simulated. Its stdout is a real
// pipe so the supervisor's reader works unchanged; tests write consumer
// output to out.
type fakeHandle struct {
	role        Role
	pid         int
	log         *eventLog
	killLatency time.Duration

	stdout *os.File
	out    *os.File
	done   chan struct{}

	exitOnce sync.Once
	mu       sync.Mutex
	status   ExitStatus
	kills    int
	released bool
}

func newFakeHandle(t *testing.T, role Role, pid int, log *eventLog) *fakeHandle {
	t.Helper()

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = pr.Close()
		_ = pw.Close()
	})

	return &fakeHandle{
		role:   role,
		pid:    pid,
		log:    log,
		stdout: pr,
		out:    pw,
		done:   make(chan struct{}),
	}
}

// exit simulates the process exiting on its own
func (h *fakeHandle) exit(status ExitStatus) {
	h.exitOnce.Do(func() {
		h.mu.Lock()
		h.status = status
		h.mu.Unlock()
		h.log.add(h.role.String() + ":exited")
		close(h.done)
	})
}

func (h *fakeHandle) writeLine(t *testing.T, s string) {
	t.Helper()
	if _, err := h.out.WriteString(s); err != nil {
		t.Fatal(err)
	}
}

func (h *fakeHandle) killCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kills
}

func (h *fakeHandle) isReleased() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *fakeHandle) PID() int { return h.pid }

func (h *fakeHandle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *fakeHandle) State() ProcessState {
	if h.Running() {
		return StateRunning
	}
	return StateExited
}

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

func (h *fakeHandle) Stdout() *os.File { return h.stdout }

func (h *fakeHandle) ReleaseStdout() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	return h.stdout.Close()
}

func (h *fakeHandle) Kill() error {
	h.mu.Lock()
	h.kills++
	h.mu.Unlock()

	if !h.Running() {
		return nil
	}

	h.log.add(h.role.String() + ":kill")
	killed := ExitStatus{Code: -1, Signaled: true}
	if h.killLatency == 0 {
		h.exit(killed)
		return nil
	}
	go func() {
		time.Sleep(h.killLatency)
		h.exit(killed)
	}()
	return nil
}

func (h *fakeHandle) Wait(ctx context.Context) (ExitStatus, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.status, nil
	case <-ctx.Done():
		return ExitStatus{}, ctx.Err()
	}
}

// fakeLauncher hands out prepared fake handles by role
type fakeLauncher struct {
	mu      sync.Mutex
	handles map[Role]*fakeHandle
	fail    map[Role]error
	specs   []LaunchSpec
}

func newFakeLauncher(handles ...*fakeHandle) *fakeLauncher {
	l := &fakeLauncher{
		handles: make(map[Role]*fakeHandle),
		fail:    make(map[Role]error),
	}
	for _, h := range handles {
		l.handles[h.role] = h
	}
	return l
}

func (l *fakeLauncher) Launch(spec LaunchSpec) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.specs = append(l.specs, spec)
	if err := l.fail[spec.Role]; err != nil {
		return nil, err
	}
	h, ok := l.handles[spec.Role]
	if !ok {
		return nil, errors.New("no fake for role " + spec.Role.String())
	}
	return h, nil
}

func (l *fakeLauncher) launched() []LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LaunchSpec(nil), l.specs...)
}

// fakeSignals replaces signal.Notify so tests can deliver interrupts
type fakeSignals struct {
	mu sync.Mutex
	ch chan<- os.Signal
}

func (f *fakeSignals) notify(c chan<- os.Signal, _ ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = c
}

func (f *fakeSignals) stop(chan<- os.Signal) {}

func (f *fakeSignals) send(sig os.Signal) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch == nil {
		return false
	}
	f.ch <- sig
	return true
}

// lockedBuffer is a bytes.Buffer safe for a writer and a polling reader
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// stepClock advances by step on every call
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

package launcher

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/superplanehq/superplane-desktop/internal/docker"
)

// callLog records the order in which collaborators were invoked.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

type fakeRuntime struct {
	log       *callLog
	available bool
	exists    bool
	pullErr   error
	bgErr     error
	bgBlock   chan struct{}
	pullLines []string

	mu      sync.Mutex
	bgSinks []docker.LineSink
}

func (f *fakeRuntime) Available(context.Context) bool {
	f.log.add("available")
	return f.available
}

func (f *fakeRuntime) ImageExists(context.Context) bool {
	f.log.add("image-exists")
	return f.exists
}

func (f *fakeRuntime) Pull(_ context.Context, sink docker.LineSink) error {
	for _, line := range f.pullLines {
		sink(line)
	}
	f.log.add("pull")
	return f.pullErr
}

func (f *fakeRuntime) PullBackground(_ context.Context, sink docker.LineSink) <-chan error {
	f.log.add("pull-background")
	f.mu.Lock()
	f.bgSinks = append(f.bgSinks, sink)
	f.mu.Unlock()

	ch := make(chan error, 1)
	if f.bgBlock == nil {
		ch <- f.bgErr
		close(ch)
		return ch
	}
	go func() {
		<-f.bgBlock
		ch <- f.bgErr
		close(ch)
	}()
	return ch
}

func (f *fakeRuntime) backgroundSinks() []docker.LineSink {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]docker.LineSink(nil), f.bgSinks...)
}

type fakeContainer struct {
	log      *callLog
	startErr error
	output   []string

	mu      sync.Mutex
	running bool
}

func (f *fakeContainer) RemoveOrphan(context.Context) {
	f.log.add("remove-orphan")
}

func (f *fakeContainer) Start(_ context.Context, sink docker.LineSink) error {
	f.log.add("start")
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.running = true
	f.mu.Unlock()
	for _, line := range f.output {
		sink(line)
	}
	return nil
}

func (f *fakeContainer) Stop(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		f.log.add("stop")
		f.running = false
	}
}

func (f *fakeContainer) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

type fakeReadiness struct {
	log   *callLog
	code  int
	err   error
	block chan struct{}
}

func (f *fakeReadiness) Wait(ctx context.Context) (int, error) {
	f.log.add("wait-ready")
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.code, f.err
}

type fakeReporter struct {
	mu       sync.Mutex
	statuses []string
	logs     []string
	errors   []string
	phases   []Phase
}

func (f *fakeReporter) Status(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, text)
}

func (f *fakeReporter) Log(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, text)
}

func (f *fakeReporter) Error(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, text)
}

func (f *fakeReporter) Phase(p Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phases = append(f.phases, p)
}

func (f *fakeReporter) errorsCopy() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.errors...)
}

func (f *fakeReporter) logsCopy() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.logs...)
}

func (f *fakeReporter) phasesCopy() []Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Phase(nil), f.phases...)
}

type fakePresenter struct {
	log  *callLog
	mu   sync.Mutex
	urls []string
}

func (f *fakePresenter) LoadApplication(url string) {
	f.log.add("load-application")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
}

func (f *fakePresenter) loads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// harness bundles a healthy set of fakes; tests flip fields to inject failures.
type harness struct {
	log       *callLog
	runtime   *fakeRuntime
	container *fakeContainer
	ready     *fakeReadiness
	reporter  *fakeReporter
	presenter *fakePresenter
}

func newHarness() *harness {
	log := &callLog{}
	return &harness{
		log:       log,
		runtime:   &fakeRuntime{log: log, available: true, exists: true},
		container: &fakeContainer{log: log, output: []string{"listening on :3000"}},
		ready:     &fakeReadiness{log: log, code: 200},
		reporter:  &fakeReporter{},
		presenter: &fakePresenter{log: log},
	}
}

func (h *harness) orchestrator(t interface{ Fatalf(string, ...any) }, mutate ...func(*Options)) *Orchestrator {
	opts := Options{
		Runtime:   h.runtime,
		Container: h.container,
		Readiness: h.ready,
		Reporter:  h.reporter,
		Presenter: h.presenter,
		Logger:    zerolog.Nop(),
		AppURL:    "http://127.0.0.1:3000",
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	o, err := New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return o
}

package deploy

import (
	"context"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/configtree"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

type stubStore struct {
	mu sync.Mutex

	getConfigurationFn    func(ctx context.Context, name string) (*function.RemoteState, error)
	createFn              func(ctx context.Context, req function.CreateRequest) (function.Identity, error)
	updateConfigurationFn func(ctx context.Context, req function.UpdateConfigurationRequest) error
	updateCodeFn          func(ctx context.Context, req function.UpdateCodeRequest) (function.Identity, error)
	pollStatusFn          func(ctx context.Context, name string) (function.UpdateStatus, error)

	calls         []string
	creates       []function.CreateRequest
	configUpdates []function.UpdateConfigurationRequest
	codeUpdates   []function.UpdateCodeRequest
}

func (s *stubStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubStore) GetConfiguration(ctx context.Context, name string) (*function.RemoteState, error) {
	s.record("get_configuration")
	if s.getConfigurationFn != nil {
		return s.getConfigurationFn(ctx, name)
	}
	return nil, function.NewError(function.ErrCodeNotFound, "function "+name+" not found", nil, nil)
}

func (s *stubStore) Create(ctx context.Context, req function.CreateRequest) (function.Identity, error) {
	s.record("create")
	s.mu.Lock()
	s.creates = append(s.creates, req)
	s.mu.Unlock()
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return function.Identity{ARN: "arn:aws:lambda:us-east-1:123456789012:function:" + req.Name, Version: "1"}, nil
}

func (s *stubStore) UpdateConfiguration(ctx context.Context, req function.UpdateConfigurationRequest) error {
	s.record("update_configuration")
	s.mu.Lock()
	s.configUpdates = append(s.configUpdates, req)
	s.mu.Unlock()
	if s.updateConfigurationFn != nil {
		return s.updateConfigurationFn(ctx, req)
	}
	return nil
}

func (s *stubStore) UpdateCode(ctx context.Context, req function.UpdateCodeRequest) (function.Identity, error) {
	s.record("update_code")
	s.mu.Lock()
	s.codeUpdates = append(s.codeUpdates, req)
	s.mu.Unlock()
	if s.updateCodeFn != nil {
		return s.updateCodeFn(ctx, req)
	}
	return function.Identity{ARN: "arn:aws:lambda:us-east-1:123456789012:function:" + req.Name, Version: "2"}, nil
}

func (s *stubStore) PollStatus(ctx context.Context, name string) (function.UpdateStatus, error) {
	s.record("poll_status")
	if s.pollStatusFn != nil {
		return s.pollStatusFn(ctx, name)
	}
	return function.UpdateStatus{State: function.UpdateSuccessful}, nil
}

func (s *stubStore) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

type stubArtifacts struct {
	code     []byte
	readErr  error
	reads    int
	released []string
}

func (s *stubArtifacts) Package(_ context.Context, source string) (string, error) {
	return source + ".zip", nil
}

func (s *stubArtifacts) Release(_ context.Context, archive string) error {
	s.released = append(s.released, archive)
	return nil
}

func (s *stubArtifacts) ReadArtifact(context.Context, string) ([]byte, error) {
	s.reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.code, nil
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) elapsed(since time.Time) time.Duration {
	return c.Now().Sub(since)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventRecord
}

type eventRecord struct {
	eventType     string
	payload       map[string]interface{}
	correlationID string
}

func (r *recordingPublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	if event == nil {
		return nil
	}
	payload := map[string]interface{}{}
	if raw, ok := event.Payload().(map[string]interface{}); ok {
		payload = raw
	}
	r.mu.Lock()
	r.events = append(r.events, eventRecord{
		eventType:     event.EventType(),
		payload:       payload,
		correlationID: ports.GetCorrelationID(ctx),
	})
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) Subscribe(string, ports.EventHandler) (ports.Subscription, error) {
	return noopSubscription{}, nil
}

func (r *recordingPublisher) phases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var phases []string
	for _, evt := range r.events {
		if evt.eventType == ports.EventReconcilePhase {
			phases = append(phases, evt.payload["phase"].(string))
		}
	}
	return phases
}

func (r *recordingPublisher) contains(eventType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, evt := range r.events {
		if evt.eventType == eventType {
			return true
		}
	}
	return false
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]int
}

func (m *recordingMetrics) IncCounter(_ context.Context, name string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = map[string]int{}
	}
	key := name
	for _, k := range []string{"outcome", "operation", "status", "state"} {
		if v, ok := labels[k]; ok {
			key += "|" + k + "=" + v
		}
	}
	m.counters[key]++
}

func (m *recordingMetrics) SetGauge(context.Context, string, float64, map[string]string) {}

func (m *recordingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (m *recordingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

func memorySize(v int) *int { return &v }

func desiredSpec() function.DesiredSpec {
	return function.DesiredSpec{
		Name:             "orders",
		Region:           "us-east-1",
		ArtifactPath:     "build/orders.zip",
		Role:             "arn:aws:iam::123456789012:role/lambda-exec",
		Handler:          "index.handler",
		Runtime:          "nodejs20.x",
		Timeout:          3,
		EphemeralStorage: 512,
		Architectures:    []string{"x86_64"},
		Publish:          true,
	}
}

// remoteFor mirrors the fields of spec as the control plane would report them.
func remoteFor(spec function.DesiredSpec, memory int) *function.RemoteState {
	config := configtree.DefaultNormalizer().Normalize(spec.ComparableTree()).
		With("MemorySize", configtree.Int(memory)).
		With("LastModified", configtree.String("2025-01-01T00:00:00.000+0000"))
	return &function.RemoteState{
		ARN:              "arn:aws:lambda:us-east-1:123456789012:function:" + spec.Name,
		Version:          function.LatestVersion,
		LastUpdateStatus: function.UpdateStatus{State: function.UpdateSuccessful},
		Config:           config,
	}
}

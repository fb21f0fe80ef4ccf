package usage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/caller"
	"github.com/ekisa-team/lingua/internal/task"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Publish(ctx context.Context, ev Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

// blockingSink holds every Publish until release is closed.
type blockingSink struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	got     []string
}

func newBlockingSink() *blockingSink {
	return &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingSink) Publish(_ context.Context, ev Event) error {
	s.once.Do(func() { close(s.started) })
	<-s.release

	s.mu.Lock()
	s.got = append(s.got, ev.ID)
	s.mu.Unlock()
	return nil
}

func (s *blockingSink) Close() error { return nil }

func TestQueue_PublishesAndDrainsOnClose(t *testing.T) {
	sink := new(MockSink)
	sink.On("Publish", mock.Anything, mock.AnythingOfType("usage.Event")).Return(nil).Times(3)
	sink.On("Close").Return(nil).Once()

	q := NewQueue(sink, 8)
	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, q.Enqueue(Event{ID: id, Task: task.Translation}))
	}

	require.NoError(t, q.Close(context.Background()))
	sink.AssertExpectations(t)

	assert.False(t, q.Enqueue(Event{ID: "late"}))
}

func TestQueue_DropsWhenFull(t *testing.T) {
	sink := newBlockingSink()
	q := NewQueue(sink, 1)

	require.True(t, q.Enqueue(Event{ID: "first"}))
	<-sink.started

	assert.True(t, q.Enqueue(Event{ID: "second"}))
	assert.False(t, q.Enqueue(Event{ID: "third"}))

	close(sink.release)
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, []string{"first", "second"}, sink.got)
}

func TestQueue_SinkErrorDoesNotStopConsumer(t *testing.T) {
	sink := new(MockSink)
	sink.On("Publish", mock.Anything, mock.MatchedBy(func(ev Event) bool { return ev.ID == "bad" })).Return(errors.New("broker down")).Once()
	sink.On("Publish", mock.Anything, mock.MatchedBy(func(ev Event) bool { return ev.ID == "good" })).Return(nil).Once()
	sink.On("Close").Return(nil)

	q := NewQueue(sink, 4)
	q.Enqueue(Event{ID: "bad"})
	q.Enqueue(Event{ID: "good"})

	require.NoError(t, q.Close(context.Background()))
	sink.AssertExpectations(t)
}

func TestQueue_CloseHonoursContext(t *testing.T) {
	sink := newBlockingSink()
	q := NewQueue(sink, 1)
	q.Enqueue(Event{ID: "stuck"})
	<-sink.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
	close(sink.release)
}

func TestConsent(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name      string
		permitted bool
		cc        *task.ControlConfig
		want      bool
	}{
		{"permitted without control config", true, nil, true},
		{"permitted with unset tracking", true, &task.ControlConfig{}, true},
		{"permitted but opted out", true, &task.ControlConfig{DataTracking: &no}, false},
		{"not permitted", false, nil, false},
		{"not permitted cannot opt in", false, &task.ControlConfig{DataTracking: &yes}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Consent(tt.permitted, tt.cc))
		})
	}
}

func TestNewEvent(t *testing.T) {
	c := caller.Caller{APIKeyID: "key-1", IP: "10.0.0.1"}
	start := time.Now().Add(-time.Second)
	req := map[string]string{"source": "hello"}
	resp := map[string]string{"target": "नमस्ते"}

	ev := NewEvent(c, task.Translation, "svc", true, req, resp, nil, start)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "10.0.0.1", ev.CallerIP)
	assert.Equal(t, "key-1", ev.APIKeyID)
	assert.Empty(t, ev.Error)
	assert.GreaterOrEqual(t, ev.Elapsed, time.Second)
	assert.JSONEq(t, `{"source":"hello"}`, string(ev.Request))

	failed := NewEvent(c, task.TTS, "svc", false, req, nil,
		apperr.Server(apperr.KindBackendUnavailable, "inference failed", errors.New("eof")), start)
	assert.False(t, failed.Consent)
	assert.JSONEq(t, `{"source":"hello"}`, string(failed.Request))
	assert.Nil(t, failed.Response)
	assert.Equal(t, "BACKEND_UNAVAILABLE_inference failed", failed.Error)
}

type fakeToken struct {
	err      error
	complete bool
}

func (t *fakeToken) Wait() bool                     { return t.complete }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.complete }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakePublisher struct {
	token        *fakeToken
	topic        string
	qos          byte
	payload      []byte
	disconnected bool
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload any) paho.Token {
	p.topic, p.qos, p.payload = topic, qos, payload.([]byte)
	return p.token
}

func (p *fakePublisher) Disconnect(uint) { p.disconnected = true }

func TestMQTTSink_Publish(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{complete: true}}
	sink := newMQTTSink(pub, "lingua/usage", 1)

	require.NoError(t, sink.Publish(context.Background(), Event{ID: "ev-1", Task: task.ASR}))
	assert.Equal(t, "lingua/usage", pub.topic)
	assert.Equal(t, byte(1), pub.qos)

	var decoded Event
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, "ev-1", decoded.ID)
	assert.Equal(t, task.ASR, decoded.Task)

	require.NoError(t, sink.Close())
	assert.True(t, pub.disconnected)
}

func TestMQTTSink_PublishErrors(t *testing.T) {
	failed := newMQTTSink(&fakePublisher{token: &fakeToken{complete: true, err: errors.New("not connected")}}, "t", 0)
	assert.ErrorContains(t, failed.Publish(context.Background(), Event{ID: "x"}), "not connected")

	pending := newMQTTSink(&fakePublisher{token: &fakeToken{}}, "t", 0)
	assert.ErrorContains(t, pending.Publish(context.Background(), Event{ID: "x"}), "timed out")
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/transport"
)

// FakeTransport is an in-memory [transport.Transport]. Tests push events with Push and inspect emitted commands.
type FakeTransport struct {
	mu      sync.Mutex
	events  chan transport.Event
	emitted []transport.Command
	closed  bool

	// EmitErr, when set, is returned by Emit and the command is not recorded.
	EmitErr error
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{events: make(chan transport.Event, 64)}
}

func (f *FakeTransport) Events() <-chan transport.Event { return f.events }

func (f *FakeTransport) Emit(cmd transport.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("fake transport closed")
	}
	if f.EmitErr != nil {
		return f.EmitErr
	}
	f.emitted = append(f.emitted, cmd)
	return nil
}

func (f *FakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// Push queues an event for the consumer.
func (f *FakeTransport) Push(ev transport.Event) {
	f.events <- ev
}

// Emitted returns a copy of every recorded command.
func (f *FakeTransport) Emitted() []transport.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.Command(nil), f.emitted...)
}

// EmittedTypes returns the type of every recorded command.
func (f *FakeTransport) EmittedTypes() []transport.CommandType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]transport.CommandType, len(f.emitted))
	for i, c := range f.emitted {
		types[i] = c.Type
	}
	return types
}

// Reset forgets recorded commands.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = nil
}

// MustEvent builds an event or fails the test.
func MustEvent(t *testing.T, typ transport.EventType, payload any) transport.Event {
	t.Helper()
	ev, err := transport.NewEvent(typ, payload)
	if err != nil {
		t.Fatalf("failed to build %s event: %v", typ, err)
	}
	return ev
}

// RecordingNavigator records navigation requests as "name:arg" strings.
type RecordingNavigator struct {
	mu    sync.Mutex
	calls []string
}

func (n *RecordingNavigator) record(format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fmt.Sprintf(format, args...))
}

func (n *RecordingNavigator) OpenCreationStep(step models.WizardStep) { n.record("step:%s", step) }
func (n *RecordingNavigator) CloseCreation() { n.record("closeCreation") }
func (n *RecordingNavigator) OpenRoom(roomID string) { n.record("openRoom:%s", roomID) }
func (n *RecordingNavigator) NavigateAwayFromRoom(s models.RoomSummary) {
	n.record("leaveRoom:%s", s.ID)
}
func (n *RecordingNavigator) NavigateBack() { n.record("back") }
func (n *RecordingNavigator) DisplayInvitation(s models.RoomSummary) { n.record("invitation:%s", s.ID) }
func (n *RecordingNavigator) HideInvitation() { n.record("hideInvitation") }

// Calls returns a copy of the recorded calls.
func (n *RecordingNavigator) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

// RecordingNotifier records notifications.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (n *RecordingNotifier) Notify(note models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, note)
}

// Notifications returns a copy of the recorded notifications.
func (n *RecordingNotifier) Notifications() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.notifications...)
}

// MockTrackService is a test double for [services.TrackService] backed by a map.
type MockTrackService struct {
	mu     sync.Mutex
	Tracks map[string]models.Track
	Err    error
	calls  [][]string
}

func (m *MockTrackService) FetchTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string(nil), ids...))
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Track
	for _, id := range ids {
		if tr, ok := m.Tracks[id]; ok {
			out = append(out, tr)
		}
	}
	return out, nil
}

// Calls returns the id lists received so far.
func (m *MockTrackService) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

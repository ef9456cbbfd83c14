package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"grimm.is/sincelast/internal/client"
	"grimm.is/sincelast/internal/clock"
)

// fakeBackend is a scripted client.APIClient.
type fakeBackend struct {
	epoch      int64
	getErr     error
	resetErr   error
	lastReset  int64
	resetCalls int
}

func (f *fakeBackend) GetCount(fallback int64) (int64, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	if f.epoch == 0 {
		f.epoch = fallback
	}
	return f.epoch, nil
}

func (f *fakeBackend) ResetCount(epoch int64) (int64, error) {
	f.resetCalls++
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	f.epoch = epoch
	f.lastReset = epoch
	return epoch, nil
}

func (f *fakeBackend) GetStatus() (*client.ServerInfo, error) { return nil, nil }

func (f *fakeBackend) WatchResets(ctx context.Context, onReset func(int64)) error {
	<-ctx.Done()
	return nil
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, cmd
}

func TestLoadingToReady(t *testing.T) {
	backend := &fakeBackend{epoch: 4910}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.English, mock, nil)

	if m.state != stateLoading {
		t.Fatal("expected initial state to be loading")
	}
	if !strings.Contains(m.View(), "Loading value") {
		t.Errorf("loading view missing placeholder: %q", m.View())
	}

	msg := m.fetchCount()()
	m, _ = update(t, m, msg)

	if m.state != stateReady {
		t.Fatal("expected ready after count arrived")
	}
	if m.reference != 4910 {
		t.Errorf("expected reference 4910, got %d", m.reference)
	}
	if !strings.Contains(m.View(), "1 minute and 30 seconds.") {
		t.Errorf("view missing sentence: %q", m.View())
	}
}

func TestFetchOffersNowAsFallback(t *testing.T) {
	backend := &fakeBackend{}
	mock := clock.NewMockClock(time.Unix(7777, 0))
	m := NewModel(backend, language.English, mock, nil)

	msg := m.fetchCount()()
	count, ok := msg.(countMsg)
	if !ok {
		t.Fatalf("expected countMsg, got %T", msg)
	}
	if int64(count) != 7777 {
		t.Errorf("expected empty store to initialize to 7777, got %d", count)
	}
}

func TestResetUsesKeypressTime(t *testing.T) {
	backend := &fakeBackend{epoch: 1000}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.English, mock, nil)
	m, _ = update(t, m, m.fetchCount()())

	_, cmd := update(t, m, keyMsg('r'))
	if cmd == nil {
		t.Fatal("expected reset command")
	}

	// The timestamp was captured at the keypress; advancing the clock
	// before the command runs must not change what gets persisted.
	mock.Advance(10 * time.Second)
	msg := cmd()

	done, ok := msg.(resetDoneMsg)
	if !ok {
		t.Fatalf("expected resetDoneMsg, got %T", msg)
	}
	if int64(done) != 5000 {
		t.Errorf("expected reset epoch 5000, got %d", done)
	}
	if backend.lastReset != 5000 {
		t.Errorf("backend persisted %d, want 5000", backend.lastReset)
	}
}

func TestResetReconcilesFromStore(t *testing.T) {
	backend := &fakeBackend{epoch: 1000}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.English, mock, nil)
	m, _ = update(t, m, m.fetchCount()())

	m, cmd := update(t, m, resetDoneMsg(5000))
	if cmd == nil {
		t.Fatal("expected a re-fetch after a successful reset")
	}
	if m.flash == "" {
		t.Error("expected confirmation flash")
	}

	// The confirmed epoch is adopted before the re-fetch lands: the
	// display must read zero right away, not the pre-reset count.
	if m.reference != 5000 {
		t.Errorf("expected reference 5000 immediately after reset, got %d", m.reference)
	}
	if !strings.Contains(m.View(), "0 minutes and 0 seconds.") {
		t.Errorf("expected zero elapsed right after reset, got %q", m.View())
	}

	m, _ = update(t, m, cmd())
	if m.reference != 5000 {
		t.Errorf("expected reference 5000 after reconcile, got %d", m.reference)
	}
}

func TestResetDisplayNotStaleWhileRefetchFails(t *testing.T) {
	backend := &fakeBackend{epoch: 1000}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.English, mock, nil)
	m, _ = update(t, m, m.fetchCount()())

	// The store already holds the new epoch; even if the reconciling
	// fetch keeps erroring, the view must show the reset count.
	backend.getErr = errors.New("connection refused")
	m, cmd := update(t, m, resetDoneMsg(5000))
	m, _ = update(t, m, cmd())

	if m.reference != 5000 {
		t.Errorf("expected reference 5000 despite failed re-fetch, got %d", m.reference)
	}
	if strings.Contains(m.View(), "1 hour") {
		t.Errorf("stale pre-reset count still displayed: %q", m.View())
	}
}

func TestResetFailureKeepsReference(t *testing.T) {
	backend := &fakeBackend{epoch: 1000, resetErr: errors.New("disk full")}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.English, mock, nil)
	m, _ = update(t, m, m.fetchCount()())

	_, cmd := update(t, m, keyMsg('r'))
	m, _ = update(t, m, cmd())

	if m.reference != 1000 {
		t.Errorf("failed reset must not move the reference, got %d", m.reference)
	}
	if !strings.Contains(m.errText, "Reset failed") {
		t.Errorf("expected surfaced error, got %q", m.errText)
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Error("expected error detail in view")
	}
}

func TestResetIgnoredWhileLoading(t *testing.T) {
	backend := &fakeBackend{}
	m := NewModel(backend, language.English, clock.NewMockClock(time.Unix(5000, 0)), nil)

	_, cmd := update(t, m, keyMsg('r'))
	if cmd != nil {
		t.Error("reset should be ignored before the epoch is loaded")
	}
	if backend.resetCalls != 0 {
		t.Error("backend must not be called while loading")
	}
}

func TestRemoteResetTriggersRefetch(t *testing.T) {
	backend := &fakeBackend{epoch: 1000}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	resets := make(chan int64, 1)
	m := NewModel(backend, language.English, mock, resets)
	m, _ = update(t, m, m.fetchCount()())

	resets <- 4990
	msg := m.waitForReset()()
	remote, ok := msg.(remoteResetMsg)
	if !ok {
		t.Fatalf("expected remoteResetMsg, got %T", msg)
	}
	if int64(remote) != 4990 {
		t.Errorf("expected pushed epoch 4990, got %d", remote)
	}

	backend.epoch = 4990
	m, cmd := update(t, m, remote)
	if cmd == nil {
		t.Fatal("expected re-fetch after remote reset")
	}
	if m.reference != 4990 {
		t.Errorf("expected pushed epoch adopted immediately, got %d", m.reference)
	}
	if m.flash == "" {
		t.Error("expected flash after remote reset")
	}
}

func TestTickAdvancesDisplay(t *testing.T) {
	backend := &fakeBackend{epoch: 5000}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.English, mock, nil)
	m, _ = update(t, m, m.fetchCount()())

	mock.Advance(61 * time.Second)
	m, cmd := update(t, m, tickMsg(mock.Now()))
	if cmd == nil {
		t.Fatal("tick must reschedule itself")
	}
	if !strings.Contains(m.View(), "1 minute and 1 second.") {
		t.Errorf("expected updated sentence, got %q", m.View())
	}
}

func TestGermanView(t *testing.T) {
	backend := &fakeBackend{epoch: 4910}
	mock := clock.NewMockClock(time.Unix(5000, 0))
	m := NewModel(backend, language.German, mock, nil)
	m, _ = update(t, m, m.fetchCount()())

	view := m.View()
	if !strings.Contains(view, "Zeit seit dem letzten Reset") {
		t.Errorf("expected German title, got %q", view)
	}
	if !strings.Contains(view, "1 Minute und 30 Sekunden.") {
		t.Errorf("expected German sentence, got %q", view)
	}
}

func TestQuit(t *testing.T) {
	backend := &fakeBackend{}
	m := NewModel(backend, language.English, clock.NewMockClock(time.Unix(0, 0)), nil)

	_, cmd := update(t, m, keyMsg('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

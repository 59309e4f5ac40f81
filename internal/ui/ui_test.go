package ui

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/models"
)

// recordingController records every command as "Name:args".
type recordingController struct {
	calls []string
}

func (c *recordingController) record(name string, args ...any) {
	call := name
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		call += ":" + strings.Join(parts, ",")
	}
	c.calls = append(c.calls, call)
}

func (c *recordingController) CreateRoom(ids ...string)            { c.record("CreateRoom") }
func (c *recordingController) StartMtvExport(id string)            { c.record("StartMtvExport", id) }
func (c *recordingController) SetRoomName(name string)             { c.record("SetRoomName", name) }
func (c *recordingController) SetOpeningStatus(v models.Visibility) { c.record("SetOpeningStatus", v) }
func (c *recordingController) SetInvitationOnly(on bool)           { c.record("SetInvitationOnly", on) }
func (c *recordingController) NextStep()                           { c.record("NextStep") }
func (c *recordingController) PreviousStep()                       { c.record("PreviousStep") }
func (c *recordingController) ConfirmCreation()                    { c.record("ConfirmCreation") }
func (c *recordingController) CancelCreation()                     { c.record("CancelCreation") }
func (c *recordingController) JoinRoom(id string)                  { c.record("JoinRoom", id) }
func (c *recordingController) AddTrack(id, track string)           { c.record("AddTrack", id, track) }
func (c *recordingController) MoveTrackUp(id, track string)        { c.record("MoveTrackUp", id, track) }
func (c *recordingController) MoveTrackDown(id, track string)      { c.record("MoveTrackDown", id, track) }
func (c *recordingController) DeleteTrack(id, track string)        { c.record("DeleteTrack", id, track) }
func (c *recordingController) LeaveRoom(id string)                 { c.record("LeaveRoom", id) }
func (c *recordingController) SetCurrentlyDisplayedRoom(id string) { c.record("SetCurrentlyDisplayedRoom", id) }
func (c *recordingController) DisplayRoomView(id string)           { c.record("DisplayRoomView", id) }
func (c *recordingController) AcceptInvitation()                   { c.record("AcceptInvitation") }
func (c *recordingController) IgnoreInvitation()                   { c.record("IgnoreInvitation") }

func (c *recordingController) last() string {
	if len(c.calls) == 0 {
		return ""
	}
	return c.calls[len(c.calls)-1]
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func roomSnapshot(id string, frozen bool, trackIDs ...string) actors.RoomSnapshot {
	room := models.NewRoom(id)
	room.Name = "Room " + id
	for _, tid := range trackIDs {
		room.Tracks = append(room.Tracks, models.Track{ID: tid, Title: "title " + tid})
	}
	snap := actors.RoomSnapshot{Room: *room}
	if frozen {
		snap.State = actors.RoomDeletingTrack
		snap.Stage = actors.StageWaitingForServerAcknowledgement
		snap.FreezeUI = true
	}
	return snap
}

func newTestModel(rooms ...actors.RoomSnapshot) (*Model, *recordingController) {
	ctl := &recordingController{}
	m := NewModel(ctl)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(viewChangedMsg(actors.View{Rooms: rooms}))
	return m, ctl
}

func TestModelRoomList(t *testing.T) {
	t.Run("enter displays the selected room", func(t *testing.T) {
		m, ctl := newTestModel(roomSnapshot("r1", false), roomSnapshot("r2", false))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if ctl.last() != "DisplayRoomView:r1" {
			t.Errorf("expected DisplayRoomView:r1, got %v", ctl.calls)
		}
		if m.view != RoomListView {
			t.Errorf("expected to stay on the list until the supervisor navigates, got %v", m.view)
		}
	})

	t.Run("join by id", func(t *testing.T) {
		m, ctl := newTestModel()
		m.Update(keyRunes("o"))
		m.Update(keyRunes("room-42"))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if ctl.last() != "JoinRoom:room-42" {
			t.Errorf("expected JoinRoom:room-42, got %v", ctl.calls)
		}
		if m.purpose != inputNone {
			t.Error("expected input to close after submitting")
		}
	})

	t.Run("q while typing is text", func(t *testing.T) {
		m, _ := newTestModel()
		m.Update(keyRunes("o"))
		m.Update(keyRunes("q"))

		if m.purpose != inputJoinRoom {
			t.Fatal("expected the input to stay open")
		}
		if m.input.Value() != "q" {
			t.Errorf("expected input value q, got %q", m.input.Value())
		}
	})

	t.Run("empty list", func(t *testing.T) {
		m, _ := newTestModel()
		if !strings.Contains(m.View(), "No open rooms yet.") {
			t.Errorf("expected empty state, got:\n%s", m.View())
		}
	})
}

func TestModelRoom(t *testing.T) {
	open := func(snap actors.RoomSnapshot) (*Model, *recordingController) {
		m, ctl := newTestModel(snap)
		m.Update(openRoomMsg(snap.Room.ID))
		return m, ctl
	}

	t.Run("mutations target the selected track", func(t *testing.T) {
		m, ctl := open(roomSnapshot("r1", false, "t1", "t2", "t3"))
		m.Update(keyRunes("j"))
		m.Update(keyRunes("x"))

		if ctl.last() != "DeleteTrack:r1,t2" {
			t.Errorf("expected DeleteTrack:r1,t2, got %v", ctl.calls)
		}

		m.Update(keyRunes("K"))
		if ctl.last() != "MoveTrackUp:r1,t2" {
			t.Errorf("expected MoveTrackUp:r1,t2, got %v", ctl.calls)
		}
	})

	t.Run("cursor follows a moved track", func(t *testing.T) {
		m, _ := open(roomSnapshot("r1", false, "t1", "t2", "t3"))
		m.Update(keyRunes("J"))
		m.Update(viewChangedMsg(actors.View{Rooms: []actors.RoomSnapshot{roomSnapshot("r1", false, "t2", "t1", "t3")}}))

		if m.trackList.Index() != 1 {
			t.Errorf("expected cursor on t1 at index 1, got %d", m.trackList.Index())
		}
	})

	t.Run("frozen room ignores mutation keys", func(t *testing.T) {
		m, ctl := open(roomSnapshot("r1", true, "t1", "t2"))
		before := len(ctl.calls)
		m.Update(keyRunes("x"))
		m.Update(keyRunes("a"))

		if len(ctl.calls) != before {
			t.Errorf("expected no commands, got %v", ctl.calls[before:])
		}
		if !strings.Contains(m.View(), "syncing (deletingTrack.waitingForServerAcknowledgement)") {
			t.Errorf("expected syncing marker, got:\n%s", m.View())
		}
	})

	t.Run("add track", func(t *testing.T) {
		m, ctl := open(roomSnapshot("r1", false))
		m.Update(keyRunes("a"))
		m.Update(keyRunes("t9"))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if ctl.last() != "AddTrack:r1,t9" {
			t.Errorf("expected AddTrack:r1,t9, got %v", ctl.calls)
		}
	})

	t.Run("esc clears the displayed room", func(t *testing.T) {
		m, ctl := open(roomSnapshot("r1", false))
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.view != RoomListView || ctl.last() != "SetCurrentlyDisplayedRoom:" {
			t.Errorf("expected list view and cleared room, got %v %v", m.view, ctl.calls)
		}
	})

	t.Run("navigate away only affects the open room", func(t *testing.T) {
		m, _ := open(roomSnapshot("r1", false))
		m.Update(summaryMsg(MsgNavigateAwayFromRoom, models.RoomSummary{ID: "r2"}))
		if m.view != RoomView {
			t.Fatalf("expected to stay in r1, got %v", m.view)
		}

		m.Update(summaryMsg(MsgNavigateAwayFromRoom, models.RoomSummary{ID: "r1"}))
		if m.view != RoomListView || m.roomID != "" {
			t.Errorf("expected room list, got %v %q", m.view, m.roomID)
		}
	})

	t.Run("leave and export", func(t *testing.T) {
		m, ctl := open(roomSnapshot("r1", false))
		m.Update(keyRunes("e"))
		m.Update(keyRunes("L"))

		want := []string{"StartMtvExport:r1", "LeaveRoom:r1"}
		if got := ctl.calls[len(ctl.calls)-2:]; !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestModelWizard(t *testing.T) {
	wizardView := func(step models.WizardStep, draft models.CreationDraft, ready bool) Msg {
		return viewChangedMsg(actors.View{Wizard: &actors.WizardSnapshot{
			Step:       step,
			Draft:      draft,
			Phase:      actors.PhaseReady,
			CanConfirm: ready,
		}})
	}

	t.Run("name step", func(t *testing.T) {
		m, ctl := newTestModel()
		m.Update(openCreationStepMsg(models.StepRoomName))
		m.Update(keyRunes("Road trip"))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		want := []string{"SetRoomName:Road trip", "NextStep"}
		if !reflect.DeepEqual(ctl.calls, want) {
			t.Errorf("expected %v, got %v", want, ctl.calls)
		}
	})

	t.Run("esc on name step cancels", func(t *testing.T) {
		m, ctl := newTestModel()
		m.Update(openCreationStepMsg(models.StepRoomName))
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if ctl.last() != "CancelCreation" {
			t.Errorf("expected CancelCreation, got %v", ctl.calls)
		}
	})

	t.Run("opening status toggles", func(t *testing.T) {
		m, ctl := newTestModel()
		m.Update(wizardView(models.StepOpeningStatus, models.CreationDraft{Name: "x"}, false))
		m.Update(openCreationStepMsg(models.StepOpeningStatus))
		m.Update(keyRunes("p"))
		m.Update(keyRunes("i"))
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		want := []string{"SetOpeningStatus:private", "SetInvitationOnly:true", "PreviousStep"}
		if !reflect.DeepEqual(ctl.calls, want) {
			t.Errorf("expected %v, got %v", want, ctl.calls)
		}
	})

	t.Run("confirmation", func(t *testing.T) {
		m, ctl := newTestModel()
		m.Update(wizardView(models.StepConfirmation, models.CreationDraft{Name: "x"}, true))
		m.Update(openCreationStepMsg(models.StepConfirmation))

		if !strings.Contains(m.View(), "Ready to create") {
			t.Errorf("expected ready marker, got:\n%s", m.View())
		}
		m.Update(keyRunes("y"))
		if ctl.last() != "ConfirmCreation" {
			t.Errorf("expected ConfirmCreation, got %v", ctl.calls)
		}
	})

	t.Run("close returns to the previous view", func(t *testing.T) {
		m, _ := newTestModel(roomSnapshot("r1", false))
		m.Update(openRoomMsg("r1"))
		m.Update(openCreationStepMsg(models.StepRoomName))
		m.Update(Msg{kind: MsgCloseCreation})

		if m.view != RoomView {
			t.Errorf("expected room view, got %v", m.view)
		}
	})
}

func TestModelInvitation(t *testing.T) {
	m, ctl := newTestModel()
	m.Update(summaryMsg(MsgDisplayInvitation, models.RoomSummary{ID: "r9", Name: "Party", CreatorName: "sam"}))

	if !strings.Contains(m.View(), `sam invited you to "Party"`) {
		t.Errorf("expected invitation prompt, got:\n%s", m.View())
	}

	m.Update(keyRunes("c"))
	if len(ctl.calls) != 0 {
		t.Errorf("expected other keys to be ignored while prompting, got %v", ctl.calls)
	}

	m.Update(keyRunes("y"))
	if ctl.last() != "AcceptInvitation" {
		t.Errorf("expected AcceptInvitation, got %v", ctl.calls)
	}

	m.Update(Msg{kind: MsgHideInvitation})
	if m.invitation != nil {
		t.Error("expected invitation to be hidden")
	}
}

func TestModelNotifications(t *testing.T) {
	m, _ := newTestModel()
	for i := range 5 {
		m.Update(notificationMsg(models.Notification{Level: models.LevelError, Title: fmt.Sprintf("n%d", i)}))
	}

	if len(m.notifications) != maxNotifications {
		t.Fatalf("expected %d notifications, got %d", maxNotifications, len(m.notifications))
	}
	view := m.View()
	if strings.Contains(view, "n1") || !strings.Contains(view, "n4") {
		t.Errorf("expected only the latest notifications, got:\n%s", view)
	}
}

func TestBridge(t *testing.T) {
	t.Run("collapses consecutive view changes", func(t *testing.T) {
		b := NewBridge()
		b.ViewChanged(actors.View{DisplayedRoom: "a"})
		b.ViewChanged(actors.View{DisplayedRoom: "b"})
		b.OpenRoom("r1")
		b.ViewChanged(actors.View{DisplayedRoom: "c"})

		if b.Pending() != 3 {
			t.Errorf("expected 3 queued messages, got %d", b.Pending())
		}
	})

	t.Run("Run forwards in order", func(t *testing.T) {
		b := NewBridge()
		var (
			mu   sync.Mutex
			got  []MsgKind
			done = make(chan struct{})
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go b.Run(ctx, func(msg tea.Msg) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, msg.(Msg).kind)
			if len(got) == 4 {
				close(done)
			}
		})

		b.OpenCreationStep(models.StepRoomName)
		b.Notify(models.Notification{Title: "x"})
		b.DisplayInvitation(models.RoomSummary{ID: "r1"})
		b.HideInvitation()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for messages")
		}

		want := []MsgKind{MsgOpenCreationStep, MsgNotification, MsgDisplayInvitation, MsgHideInvitation}
		mu.Lock()
		defer mu.Unlock()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/models"
)

// MsgKind enumerates all message types sent by the [Bridge].
type MsgKind int

// Msg represents all possible supervisor messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgViewChanged MsgKind = iota
	MsgOpenCreationStep
	MsgCloseCreation
	MsgOpenRoom
	MsgNavigateAwayFromRoom
	MsgNavigateBack
	MsgDisplayInvitation
	MsgHideInvitation
	MsgNotification
)

// viewChangedMsg is the constructor for [MsgViewChanged]
func viewChangedMsg(v actors.View) Msg {
	return Msg{kind: MsgViewChanged, data: v}
}

// openCreationStepMsg is the constructor for [MsgOpenCreationStep]
func openCreationStepMsg(step models.WizardStep) Msg {
	return Msg{kind: MsgOpenCreationStep, data: step}
}

// openRoomMsg is the constructor for [MsgOpenRoom]
func openRoomMsg(roomID string) Msg {
	return Msg{kind: MsgOpenRoom, data: roomID}
}

// summaryMsg is the constructor for [MsgNavigateAwayFromRoom] and [MsgDisplayInvitation]
func summaryMsg(kind MsgKind, s models.RoomSummary) Msg {
	return Msg{kind: kind, data: s}
}

// notificationMsg is the constructor for [MsgNotification]
func notificationMsg(n models.Notification) Msg {
	return Msg{kind: MsgNotification, data: n}
}

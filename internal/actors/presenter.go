package actors

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/models"
)

// Navigator moves the presentation layer between screens.
type Navigator interface {
	OpenCreationStep(step models.WizardStep)
	CloseCreation()
	OpenRoom(roomID string)
	// NavigateAwayFromRoom leaves a room screen the user was looking at when the room went away.
	NavigateAwayFromRoom(summary models.RoomSummary)
	NavigateBack()
	DisplayInvitation(summary models.RoomSummary)
	HideInvitation()
}

// Notifier shows transient messages.
type Notifier interface {
	Notify(n models.Notification)
}

// Observer receives a fresh [View] after every dispatch that may have changed state.
// It is called on the supervisor goroutine and must not block.
type Observer interface {
	ViewChanged(v View)
}

// LogPresenter is a headless [Navigator] and [Notifier] that writes to a logger.
type LogPresenter struct {
	Logger *log.Logger
}

func (p LogPresenter) OpenCreationStep(step models.WizardStep) {
	p.Logger.Info("creation step", "step", step)
}

func (p LogPresenter) CloseCreation() { p.Logger.Info("creation closed") }

func (p LogPresenter) OpenRoom(roomID string) { p.Logger.Info("open room", "room", roomID) }

func (p LogPresenter) NavigateAwayFromRoom(s models.RoomSummary) {
	p.Logger.Info("leaving room screen", "room", s.ID, "name", s.Name)
}

func (p LogPresenter) NavigateBack() { p.Logger.Info("navigate back") }

func (p LogPresenter) DisplayInvitation(s models.RoomSummary) {
	p.Logger.Info("invitation received", "room", s.ID, "name", s.Name, "from", s.CreatorName)
}

func (p LogPresenter) HideInvitation() { p.Logger.Info("invitation closed") }

func (p LogPresenter) Notify(n models.Notification) {
	kv := []any{"room", n.RoomID, "message", n.Message}
	switch n.Level {
	case models.LevelError:
		p.Logger.Error(n.Title, kv...)
	case models.LevelWarning:
		p.Logger.Warn(n.Title, kv...)
	default:
		p.Logger.Info(n.Title, kv...)
	}
}

type nopNavigator struct{}

func (nopNavigator) OpenCreationStep(models.WizardStep)      {}
func (nopNavigator) CloseCreation()                          {}
func (nopNavigator) OpenRoom(string)                         {}
func (nopNavigator) NavigateAwayFromRoom(models.RoomSummary) {}
func (nopNavigator) NavigateBack()                           {}
func (nopNavigator) DisplayInvitation(models.RoomSummary)    {}
func (nopNavigator) HideInvitation()                         {}

type nopNotifier struct{}

func (nopNotifier) Notify(models.Notification) {}

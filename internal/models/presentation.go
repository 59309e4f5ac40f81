package models

// WizardStep is a step of the room creation wizard.
type WizardStep int

const (
	StepRoomName WizardStep = iota
	StepOpeningStatus
	StepConfirmation
	StepConfirmed
)

func (s WizardStep) String() string {
	switch s {
	case StepRoomName:
		return "roomName"
	case StepOpeningStatus:
		return "openingStatus"
	case StepConfirmation:
		return "confirmation"
	case StepConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// NotificationLevel is the severity of a [Notification].
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l NotificationLevel) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message (toast) for the user.
type Notification struct {
	ID      string
	Level   NotificationLevel
	RoomID  string
	Title   string
	Message string
}

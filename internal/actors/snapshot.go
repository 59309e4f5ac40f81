package actors

import "github.com/desertthunder/roomsync/internal/models"

// RoomSnapshot is an immutable copy of a room actor.
type RoomSnapshot struct {
	Room     models.Room             `json:"room"`
	State    RoomState               `json:"state"`
	Stage    PipelineStage           `json:"stage,omitempty"`
	Pending  *models.PendingMutation `json:"pendingMutation,omitempty"`
	FreezeUI bool                    `json:"freezeUi"`
}

// StateName is the state and pipeline stage, e.g. "addingTrack.waitingForServerAcknowledgement".
func (s RoomSnapshot) StateName() string {
	if s.Stage == StageNone {
		return s.State.String()
	}
	return s.State.String() + "." + s.Stage.String()
}

// WizardSnapshot is an immutable copy of the creation wizard.
type WizardSnapshot struct {
	Step       models.WizardStep
	Draft      models.CreationDraft
	Phase      ConfirmationPhase
	Tracks     []models.Track
	CanConfirm bool
}

// View is everything the presentation layer reads, captured after a dispatch.
type View struct {
	Rooms         []RoomSnapshot
	Wizard        *WizardSnapshot
	Invitation    *models.RoomSummary
	DisplayedRoom string
}

// Room returns the snapshot of the room with the given id.
func (v View) Room(id string) (RoomSnapshot, bool) {
	for _, r := range v.Rooms {
		if r.Room.ID == id {
			return r, true
		}
	}
	return RoomSnapshot{}, false
}

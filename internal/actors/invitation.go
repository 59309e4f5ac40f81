package actors

import "github.com/desertthunder/roomsync/internal/models"

// InvitationState is the state of the [InvitationHandler].
type InvitationState int

const (
	InvitationIdle InvitationState = iota
	InvitationDisplaying
)

func (s InvitationState) String() string {
	if s == InvitationDisplaying {
		return "displayingInvitation"
	}
	return "idle"
}

// InvitationHandler shows at most one room invitation at a time.
type InvitationHandler struct {
	state   InvitationState
	current models.RoomSummary
}

func (h *InvitationHandler) State() InvitationState { return h.state }

// Current returns the displayed invitation.
func (h *InvitationHandler) Current() (models.RoomSummary, bool) {
	return h.current, h.state == InvitationDisplaying
}

// receive displays the invitation if none is showing. It reports whether the invitation was taken.
func (h *InvitationHandler) receive(s models.RoomSummary) bool {
	if h.state == InvitationDisplaying {
		return false
	}
	h.state = InvitationDisplaying
	h.current = s
	return true
}

// resolve returns to idle and hands back the invitation that was displayed.
func (h *InvitationHandler) resolve() (models.RoomSummary, bool) {
	if h.state != InvitationDisplaying {
		return models.RoomSummary{}, false
	}
	s := h.current
	h.state = InvitationIdle
	h.current = models.RoomSummary{}
	return s, true
}

package actors

import (
	"time"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/transport"
)

// effect is a side effect requested by an actor and executed by the supervisor loop.
type effect interface{ isEffect() }

// submitMutation emits the mutation command. The actor hears back through mutationSent or mutationSendFailed.
type submitMutation struct {
	roomID   string
	mutation models.PendingMutation
}

// emitCommand hands a command to the transport without reporting back.
type emitCommand struct {
	cmd transport.Command
}

// mutationRejected reports a failed mutation so the supervisor can notify and count it.
type mutationRejected struct {
	roomID   string
	mutation models.PendingMutation
	err      error
}

type notify struct {
	n models.Notification
}

type navigate struct {
	fn func(Navigator)
}

// startTimer schedules delivery of msg back to the requesting actor after d, replacing any timer with the same key.
// An empty roomID addresses the creation wizard.
type startTimer struct {
	key    string
	d      time.Duration
	roomID string
	msg    any
}

type cancelTimer struct {
	key string
}

// fetchTracks resolves track metadata off the loop and delivers a tracksFetched message to the wizard.
type fetchTracks struct {
	ids []string
	gen int
}

// draftReady hands the finished creation draft to the supervisor.
type draftReady struct {
	draft models.CreationDraft
}

func (submitMutation) isEffect()   {}
func (emitCommand) isEffect()      {}
func (mutationRejected) isEffect() {}
func (notify) isEffect()           {}
func (navigate) isEffect()         {}
func (startTimer) isEffect()       {}
func (cancelTimer) isEffect()      {}
func (fetchTracks) isEffect()      {}
func (draftReady) isEffect()       {}

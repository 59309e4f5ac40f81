package actors

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// RoomState is the top-level state of a [RoomActor].
type RoomState int

const (
	RoomIdle RoomState = iota
	RoomAddingTrack
	RoomMovingTrack
	RoomDeletingTrack
)

func (s RoomState) String() string {
	switch s {
	case RoomAddingTrack:
		return "addingTrack"
	case RoomMovingTrack:
		return "movingTrack"
	case RoomDeletingTrack:
		return "deletingTrack"
	default:
		return "idle"
	}
}

func (s RoomState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// PipelineStage is the sub-state of a mutation state.
type PipelineStage int

const (
	StageNone PipelineStage = iota
	StageSendingToServer
	StageWaitingForServerAcknowledgement
	StageDebouncing
)

func (s PipelineStage) String() string {
	switch s {
	case StageSendingToServer:
		return "sendingToServer"
	case StageWaitingForServerAcknowledgement:
		return "waitingForServerAcknowledgement"
	case StageDebouncing:
		return "debouncing"
	default:
		return ""
	}
}

func (s PipelineStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func stateFor(kind models.MutationKind) RoomState {
	switch kind {
	case models.MutationAdd:
		return RoomAddingTrack
	case models.MutationMove:
		return RoomMovingTrack
	case models.MutationDelete:
		return RoomDeletingTrack
	default:
		return RoomIdle
	}
}

// Messages understood by [RoomActor.Send].
type (
	addTrack struct{ trackID string }

	moveTrack struct {
		trackID   string
		direction models.MoveDirection
	}

	deleteTrack struct{ trackID string }

	// mutationSent is the "sent" acknowledgement: the transport accepted the command.
	mutationSent struct{}

	mutationSendFailed struct{ err error }

	mutationSucceeded struct{ kind models.MutationKind }

	mutationFailed struct{ kind models.MutationKind }

	acknowledgementTimedOut struct{}

	debounceElapsed struct{}

	// assignMergeNewState carries a server snapshot for the room.
	assignMergeNewState struct{ patch models.RoomPatch }
)

// RoomActor mirrors one room and serializes edits against it.
//
// The zero value is not usable; rooms are spawned by the [Supervisor].
type RoomActor struct {
	room    *models.Room
	state   RoomState
	stage   PipelineStage
	pending *models.PendingMutation

	// rollback is the track list before the optimistic apply. Nil when nothing can be rolled back.
	rollback []models.Track

	debounce   time.Duration
	ackTimeout time.Duration
	logger     *log.Logger
}

func newRoomActor(room *models.Room, debounce, ackTimeout time.Duration, logger *log.Logger) *RoomActor {
	return &RoomActor{
		room:       room,
		debounce:   debounce,
		ackTimeout: ackTimeout,
		logger:     shared.WithLogger(logger, "room", room.ID),
	}
}

func (a *RoomActor) ID() string { return a.room.ID }

func (a *RoomActor) State() RoomState { return a.state }

func (a *RoomActor) Stage() PipelineStage { return a.stage }

// FreezeUI reports whether an edit is in flight and edit controls should be disabled.
func (a *RoomActor) FreezeUI() bool { return a.state != RoomIdle }

// Pending returns the in-flight mutation, if any.
func (a *RoomActor) Pending() (models.PendingMutation, bool) {
	if a.pending == nil {
		return models.PendingMutation{}, false
	}
	return *a.pending, true
}

// Send dispatches a message to the actor and returns the effects it requests.
func (a *RoomActor) Send(msg any) []effect {
	switch m := msg.(type) {
	case addTrack:
		return a.accept(m.trackID, func() (models.PendingMutation, bool) {
			if m.trackID == "" || a.room.IndexOf(m.trackID) >= 0 {
				return models.PendingMutation{}, false
			}
			return models.AddMutation(m.trackID), true
		})
	case moveTrack:
		return a.accept(m.trackID, func() (models.PendingMutation, bool) {
			idx := a.room.IndexOf(m.trackID)
			if idx < 0 {
				return models.PendingMutation{}, false
			}
			if m.direction == models.MoveUp {
				if idx == 0 {
					return models.PendingMutation{}, false
				}
				return models.MoveMutation(m.trackID, idx, idx-1), true
			}
			if idx >= len(a.room.Tracks)-1 {
				return models.PendingMutation{}, false
			}
			return models.MoveMutation(m.trackID, idx, idx+1), true
		})
	case deleteTrack:
		return a.accept(m.trackID, func() (models.PendingMutation, bool) {
			if a.room.IndexOf(m.trackID) < 0 {
				return models.PendingMutation{}, false
			}
			return models.DeleteMutation(m.trackID), true
		})
	case mutationSent:
		return a.sent()
	case mutationSendFailed:
		return a.sendFailed(m.err)
	case mutationSucceeded:
		return a.succeeded(m.kind)
	case mutationFailed:
		return a.fail(m.kind, shared.ErrServerRejected)
	case acknowledgementTimedOut:
		if a.stage != StageWaitingForServerAcknowledgement {
			return nil
		}
		return a.fail(a.pending.Kind, shared.ErrAcknowledgementTimeout)
	case debounceElapsed:
		if a.stage != StageDebouncing {
			return nil
		}
		a.logger.Debug("mutation settled", "mutation", a.pending)
		a.reset()
		return nil
	case assignMergeNewState:
		a.merge(m.patch)
		return nil
	default:
		a.logger.Warn("unhandled room message", "message", fmt.Sprintf("%T", msg))
		return nil
	}
}

// accept starts a mutation from idle when guard passes. Anything else is a silent rejection.
func (a *RoomActor) accept(trackID string, guard func() (models.PendingMutation, bool)) []effect {
	if a.state != RoomIdle {
		a.logger.Debug("mutation rejected while busy", "state", a.state, "track", trackID)
		return nil
	}
	m, ok := guard()
	if !ok {
		a.logger.Debug("mutation rejected by guard", "track", trackID)
		return nil
	}

	a.pending = &m
	a.state = stateFor(m.Kind)
	a.stage = StageSendingToServer
	a.logger.Debug("mutation started", "mutation", m)
	return []effect{submitMutation{roomID: a.room.ID, mutation: m}}
}

// sent applies the pending mutation to the mirror and waits for the server verdict.
func (a *RoomActor) sent() []effect {
	if a.stage != StageSendingToServer {
		return nil
	}
	a.stage = StageWaitingForServerAcknowledgement
	a.rollback = append([]models.Track{}, a.room.Tracks...)
	a.room.Tracks = a.pending.Apply(a.room.Tracks)

	if a.ackTimeout <= 0 {
		return nil
	}
	return []effect{startTimer{
		key:    roomTimerKey(a.room.ID, "ack"),
		d:      a.ackTimeout,
		roomID: a.room.ID,
		msg:    acknowledgementTimedOut{},
	}}
}

func (a *RoomActor) sendFailed(err error) []effect {
	if a.stage != StageSendingToServer {
		return nil
	}
	m := *a.pending
	a.reset()
	return []effect{mutationRejected{roomID: a.room.ID, mutation: m, err: err}}
}

func (a *RoomActor) succeeded(kind models.MutationKind) []effect {
	if a.stage != StageWaitingForServerAcknowledgement || a.pending.Kind != kind {
		a.logger.Debug("ignoring stale success", "kind", kind, "state", a.state, "stage", a.stage)
		return nil
	}
	a.rollback = nil
	a.stage = StageDebouncing
	return []effect{
		cancelTimer{key: roomTimerKey(a.room.ID, "ack")},
		startTimer{key: roomTimerKey(a.room.ID, "debounce"), d: a.debounce, roomID: a.room.ID, msg: debounceElapsed{}},
	}
}

// fail restores the mirror to its state before the mutation, unless a server snapshot replaced the list since.
func (a *RoomActor) fail(kind models.MutationKind, err error) []effect {
	if a.stage != StageWaitingForServerAcknowledgement || a.pending.Kind != kind {
		a.logger.Debug("ignoring stale failure", "kind", kind, "state", a.state, "stage", a.stage)
		return nil
	}
	if a.rollback != nil {
		a.room.Tracks = a.rollback
	}
	m := *a.pending
	a.reset()
	return []effect{
		cancelTimer{key: roomTimerKey(a.room.ID, "ack")},
		mutationRejected{roomID: a.room.ID, mutation: m, err: err},
	}
}

// merge applies a server snapshot. The in-flight mutation is left alone.
func (a *RoomActor) merge(p models.RoomPatch) {
	a.room.Merge(p)
	if p.Tracks != nil {
		a.rollback = nil
	}
}

func (a *RoomActor) reset() {
	a.state = RoomIdle
	a.stage = StageNone
	a.pending = nil
	a.rollback = nil
}

// Snapshot returns an immutable copy of the actor state.
func (a *RoomActor) Snapshot() RoomSnapshot {
	s := RoomSnapshot{
		Room:     *a.room.Clone(),
		State:    a.state,
		Stage:    a.stage,
		FreezeUI: a.FreezeUI(),
	}
	if a.pending != nil {
		m := *a.pending
		s.Pending = &m
	}
	return s
}

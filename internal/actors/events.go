package actors

import (
	"fmt"
	"strings"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/desertthunder/roomsync/internal/transport"
)

var successKinds = map[transport.EventType]models.MutationKind{
	transport.AddTracksSuccess:        models.MutationAdd,
	transport.ChangeTrackOrderSuccess: models.MutationMove,
	transport.DeleteTracksSuccess:     models.MutationDelete,
}

var failKinds = map[transport.EventType]models.MutationKind{
	transport.AddTracksFail:        models.MutationAdd,
	transport.ChangeTrackOrderFail: models.MutationMove,
	transport.DeleteTracksFail:     models.MutationDelete,
}

// handleEvent routes one server push. Malformed payloads are logged and dropped.
func (s *Supervisor) handleEvent(ev transport.Event) {
	s.metrics.IncEventsReceived(string(ev.Type))
	s.logger.Debug("event received", "type", ev.Type)

	var err error
	switch ev.Type {
	case transport.RoomCreationAcknowledgement:
		err = s.onRoomCreationAcknowledgement(ev)
	case transport.RoomIsReady:
		err = s.onRoomIsReady(ev)
	case transport.AddTracksSuccess, transport.ChangeTrackOrderSuccess, transport.DeleteTracksSuccess:
		err = s.onMutationSuccess(ev, successKinds[ev.Type])
	case transport.AddTracksFail, transport.ChangeTrackOrderFail, transport.DeleteTracksFail:
		err = s.onMutationFail(ev, failKinds[ev.Type])
	case transport.TracksListUpdate, transport.UsersLengthUpdate, transport.GetContextSuccess:
		err = s.onRoomState(ev)
	case transport.GetContextFail:
		err = s.onGetContextFail(ev)
	case transport.JoinRoomCallback:
		err = s.onJoinRoomCallback(ev)
	case transport.LeaveRoomCallback, transport.ForcedDisconnection:
		err = s.onRoomGone(ev)
	case transport.ReceivedRoomInvitation:
		err = s.onInvitation(ev)
	default:
		s.programmerError(ev)
		return
	}

	if err != nil {
		s.metrics.IncEventsDropped("bad_payload")
		s.logger.Error("dropping malformed event", "type", ev.Type, "err", err)
	}
}

// programmerError handles an event type outside the protocol. It is a version mismatch, not a runtime fault.
func (s *Supervisor) programmerError(ev transport.Event) {
	err := fmt.Errorf("%w: %s", shared.ErrUnknownEvent, ev.Type)
	if s.opts.Strict {
		panic(err)
	}
	s.metrics.IncEventsDropped("unknown_event")
	s.logger.Error("dropping event", "err", err)
}

func (s *Supervisor) dropUnknownRoom(ev transport.Event, roomID string) {
	s.metrics.IncEventsDropped("unknown_room")
	s.logger.Debug("event for unknown room", "type", ev.Type, "room", roomID)
}

func decodeCallback(ev transport.Event) (transport.RoomCallbackPayload, error) {
	p, err := transport.Decode[transport.RoomCallbackPayload](ev)
	if err != nil {
		return p, err
	}
	if p.RoomID == "" {
		return p, fmt.Errorf("%w: %s has no roomId", shared.ErrBadPayload, ev.Type)
	}
	return p, nil
}

func decodeState(ev transport.Event) (models.RoomPatch, error) {
	p, err := transport.Decode[transport.RoomStatePayload](ev)
	if err != nil {
		return models.RoomPatch{}, err
	}
	if p.State.ID == "" {
		return models.RoomPatch{}, fmt.Errorf("%w: %s state has no roomID", shared.ErrBadPayload, ev.Type)
	}
	return p.State, nil
}

func decodeSummary(ev transport.Event) (models.RoomSummary, error) {
	p, err := transport.Decode[transport.RoomSummaryPayload](ev)
	if err != nil {
		return models.RoomSummary{}, err
	}
	if p.RoomSummary.ID == "" {
		return models.RoomSummary{}, fmt.Errorf("%w: %s has no roomID", shared.ErrBadPayload, ev.Type)
	}
	return p.RoomSummary, nil
}

// onRoomCreationAcknowledgement spawns the room once. Every device of the user may receive it, but only the
// device that asked for a room of that name navigates into it. Repeated acknowledgements never overwrite a
// live actor.
func (s *Supervisor) onRoomCreationAcknowledgement(ev transport.Event) error {
	patch, err := decodeState(ev)
	if err != nil {
		return err
	}

	if s.registry.exists(patch.ID) {
		s.logger.Debug("duplicate creation acknowledgement", "room", patch.ID)
	} else {
		room := models.NewRoom(patch.ID)
		room.Merge(patch)
		s.spawn(room)
	}

	if s.claimPendingCreation(patch.Name) {
		s.displayed = patch.ID
		s.nav.OpenRoom(patch.ID)
		a, _ := s.registry.get(patch.ID)
		s.notifier.Notify(models.Notification{
			ID:      shared.GenerateID(),
			Level:   models.LevelSuccess,
			RoomID:  patch.ID,
			Title:   "Room created",
			Message: a.room.Name,
		})
	}
	return nil
}

func (s *Supervisor) onRoomIsReady(ev transport.Event) error {
	patch, err := decodeState(ev)
	if err != nil {
		return err
	}
	if !s.sendRoom(patch.ID, assignMergeNewState{patch: patch}) {
		s.dropUnknownRoom(ev, patch.ID)
	}
	return nil
}

// onMutationSuccess settles the pipeline before merging the authoritative state it carries.
func (s *Supervisor) onMutationSuccess(ev transport.Event, kind models.MutationKind) error {
	p, err := decodeCallback(ev)
	if err != nil {
		return err
	}
	if !s.sendRoom(p.RoomID, mutationSucceeded{kind: kind}) {
		s.dropUnknownRoom(ev, p.RoomID)
		return nil
	}
	if patch, ok := p.Patch(); ok {
		s.sendRoom(p.RoomID, assignMergeNewState{patch: patch})
	}
	return nil
}

func (s *Supervisor) onMutationFail(ev transport.Event, kind models.MutationKind) error {
	p, err := decodeCallback(ev)
	if err != nil {
		return err
	}
	if !s.sendRoom(p.RoomID, mutationFailed{kind: kind}) {
		s.dropUnknownRoom(ev, p.RoomID)
	}
	return nil
}

// onRoomState merges background syncs into rooms that are open. Absent rooms are tolerated.
func (s *Supervisor) onRoomState(ev transport.Event) error {
	p, err := decodeCallback(ev)
	if err != nil {
		return err
	}
	patch, ok := p.Patch()
	if !ok {
		return nil
	}
	if !s.sendRoom(p.RoomID, assignMergeNewState{patch: patch}) {
		s.dropUnknownRoom(ev, p.RoomID)
	}
	return nil
}

// onGetContextFail drops the room, if any, and always navigates back.
func (s *Supervisor) onGetContextFail(ev transport.Event) error {
	p, err := decodeCallback(ev)
	if err != nil {
		return err
	}
	s.nav.NavigateBack()
	s.notifier.Notify(models.Notification{
		ID:      shared.GenerateID(),
		Level:   models.LevelError,
		RoomID:  p.RoomID,
		Title:   "Room unavailable",
		Message: "The room could not be loaded.",
	})
	s.teardown(p.RoomID)
	return nil
}

func (s *Supervisor) onJoinRoomCallback(ev transport.Event) error {
	p, err := decodeCallback(ev)
	if err != nil {
		return err
	}
	patch, _ := p.Patch()
	if s.sendRoom(p.RoomID, assignMergeNewState{patch: patch}) {
		return nil
	}
	room := models.NewRoom(p.RoomID)
	room.Merge(patch)
	s.spawn(room)
	return nil
}

// onRoomGone handles leave callbacks and forced disconnections. Only the displayed room navigates away.
func (s *Supervisor) onRoomGone(ev transport.Event) error {
	summary, err := decodeSummary(ev)
	if err != nil {
		return err
	}
	if !s.registry.exists(summary.ID) {
		s.logger.Debug("room already gone", "type", ev.Type, "room", summary.ID)
		return nil
	}

	if s.displayed == summary.ID {
		s.nav.NavigateAwayFromRoom(summary)
		title := "You left the room"
		if ev.Type == transport.ForcedDisconnection {
			title = "Disconnected from the room"
		}
		s.notifier.Notify(models.Notification{
			ID:      shared.GenerateID(),
			Level:   models.LevelInfo,
			RoomID:  summary.ID,
			Title:   title,
			Message: summary.Name,
		})
	}
	s.teardown(summary.ID)
	return nil
}

// onInvitation displays the invitation when none is showing. A second one is dropped and the first kept.
func (s *Supervisor) onInvitation(ev transport.Event) error {
	summary, err := decodeSummary(ev)
	if err != nil {
		return err
	}
	if !s.invitation.receive(summary) {
		current, _ := s.invitation.Current()
		s.metrics.IncEventsDropped("invitation_displayed")
		s.logger.Warn("invitation dropped while another is displayed", "room", summary.ID, "displayed", current.ID)
		return nil
	}
	s.nav.DisplayInvitation(summary)
	return nil
}

// claimPendingCreation removes the pending creation an acknowledgement answers. Acknowledgements without a
// name answer the oldest request.
func (s *Supervisor) claimPendingCreation(name *string) bool {
	if len(s.pendingCreations) == 0 {
		return false
	}
	if name == nil {
		s.pendingCreations = s.pendingCreations[1:]
		return true
	}
	want := strings.TrimSpace(*name)
	for i, requested := range s.pendingCreations {
		if requested == want {
			s.pendingCreations = append(s.pendingCreations[:i], s.pendingCreations[i+1:]...)
			return true
		}
	}
	return false
}

// Package transport carries named events between the room server and the client.
//
// Inbound traffic is a stream of [Event] values whose payload is decoded lazily by the consumer with [Decode].
// Outbound traffic is a [Command]. Both travel as a JSON envelope: {"type": "...", "payload": {...}}.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// EventType names a server to client event.
type EventType string

const (
	RoomCreationAcknowledgement EventType = "ROOM_CREATION_ACKNOWLEDGEMENT"
	RoomIsReady                 EventType = "ROOM_IS_READY"
	AddTracksSuccess            EventType = "ADD_TRACKS_SUCCESS"
	AddTracksFail               EventType = "ADD_TRACKS_FAIL"
	ChangeTrackOrderSuccess     EventType = "CHANGE_TRACK_ORDER_SUCCESS"
	ChangeTrackOrderFail        EventType = "CHANGE_TRACK_ORDER_FAIL"
	DeleteTracksSuccess         EventType = "DELETE_TRACKS_SUCCESS"
	DeleteTracksFail            EventType = "DELETE_TRACKS_FAIL"
	TracksListUpdate            EventType = "TRACKS_LIST_UPDATE"
	UsersLengthUpdate           EventType = "USERS_LENGTH_UPDATE"
	GetContextSuccess           EventType = "GET_CONTEXT_SUCCESS"
	GetContextFail              EventType = "GET_CONTEXT_FAIL"
	JoinRoomCallback            EventType = "JOIN_ROOM_CALLBACK"
	LeaveRoomCallback           EventType = "LEAVE_ROOM_CALLBACK"
	ForcedDisconnection         EventType = "FORCED_DISCONNECTION"
	ReceivedRoomInvitation      EventType = "RECEIVED_ROOM_INVITATION"
)

// EventTypes lists every event the client understands.
var EventTypes = []EventType{
	RoomCreationAcknowledgement, RoomIsReady,
	AddTracksSuccess, AddTracksFail,
	ChangeTrackOrderSuccess, ChangeTrackOrderFail,
	DeleteTracksSuccess, DeleteTracksFail,
	TracksListUpdate, UsersLengthUpdate,
	GetContextSuccess, GetContextFail,
	JoinRoomCallback, LeaveRoomCallback,
	ForcedDisconnection, ReceivedRoomInvitation,
}

// Event is an inbound server message.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event by encoding payload. Intended for tests and fakes.
func NewEvent(t EventType, payload any) (Event, error) {
	ev := Event{Type: t}
	if payload == nil {
		return ev, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ev, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	ev.Payload = b
	return ev, nil
}

// Decode unmarshals the event payload into T.
func Decode[T any](ev Event) (T, error) {
	var v T
	if len(ev.Payload) == 0 {
		return v, fmt.Errorf("%w: %s has no payload", shared.ErrBadPayload, ev.Type)
	}
	if err := json.Unmarshal(ev.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", shared.ErrBadPayload, ev.Type, err)
	}
	return v, nil
}

// RoomStatePayload carries a full or partial room snapshot.
type RoomStatePayload struct {
	State models.RoomPatch `json:"state"`
}

// RoomCallbackPayload is the payload of most room scoped callbacks.
type RoomCallbackPayload struct {
	RoomID          string            `json:"roomId"`
	State           *models.RoomPatch `json:"state,omitempty"`
	UserIsNotInRoom *bool             `json:"userIsNotInRoom,omitempty"`
}

// Patch returns the carried snapshot scoped to the callback room, with the membership flag folded in.
// The second value is false when the callback carries no state at all.
func (p RoomCallbackPayload) Patch() (models.RoomPatch, bool) {
	if p.State == nil && p.UserIsNotInRoom == nil {
		return models.RoomPatch{ID: p.RoomID}, false
	}
	patch := models.RoomPatch{}
	if p.State != nil {
		patch = *p.State
	}
	patch.ID = p.RoomID
	if p.UserIsNotInRoom != nil {
		patch = patch.WithUserIsNotInRoom(*p.UserIsNotInRoom)
	}
	return patch, true
}

// RoomSummaryPayload carries a room reference.
type RoomSummaryPayload struct {
	RoomSummary models.RoomSummary `json:"roomSummary"`
}

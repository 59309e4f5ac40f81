package transport

import (
	"encoding/json"

	"github.com/desertthunder/roomsync/internal/models"
)

// CommandType names a client to server command.
type CommandType string

const (
	CreateRoom           CommandType = "CREATE_ROOM"
	AddTracks            CommandType = "ADD_TRACKS"
	ChangeTrackOrderUp   CommandType = "CHANGE_TRACK_ORDER_UP"
	ChangeTrackOrderDown CommandType = "CHANGE_TRACK_ORDER_DOWN"
	DeleteTracks         CommandType = "DELETE_TRACKS"
	GetContext           CommandType = "GET_CONTEXT"
	JoinRoom             CommandType = "JOIN_ROOM"
	LeaveRoom            CommandType = "LEAVE_ROOM"
	ExportToMtv          CommandType = "EXPORT_TO_MTV"
	CreatorInviteUser    CommandType = "CREATOR_INVITE_USER"
)

// Command is an outbound client message.
type Command struct {
	Type    CommandType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// Encode renders the command as a wire envelope.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// RoomIDPayload identifies a room.
type RoomIDPayload struct {
	RoomID string `json:"roomId"`
}

// TrackIDsPayload targets tracks of a room.
type TrackIDsPayload struct {
	RoomID   string   `json:"roomId"`
	TrackIDs []string `json:"tracksIDs"`
}

// ChangeTrackOrderPayload describes a one position move.
type ChangeTrackOrderPayload struct {
	RoomID    string `json:"roomId"`
	TrackID   string `json:"trackId"`
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
}

// ExportToMtvPayload exports a room to the voting variant.
type ExportToMtvPayload struct {
	RoomID  string                  `json:"roomId"`
	Options models.MtvExportOptions `json:"mtvRoomOptions"`
}

// InviteUserPayload invites a user into a room.
type InviteUserPayload struct {
	RoomID        string `json:"roomId"`
	InvitedUserID string `json:"userId"`
}

func NewCreateRoom(params models.CreationParams) Command {
	return Command{Type: CreateRoom, Payload: params}
}

func NewJoinRoom(roomID string) Command {
	return Command{Type: JoinRoom, Payload: RoomIDPayload{RoomID: roomID}}
}

func NewLeaveRoom(roomID string) Command {
	return Command{Type: LeaveRoom, Payload: RoomIDPayload{RoomID: roomID}}
}

func NewGetContext(roomID string) Command {
	return Command{Type: GetContext, Payload: RoomIDPayload{RoomID: roomID}}
}

func NewExportToMtv(roomID string, opts models.MtvExportOptions) Command {
	return Command{Type: ExportToMtv, Payload: ExportToMtvPayload{RoomID: roomID, Options: opts}}
}

func NewInviteUser(roomID, userID string) Command {
	return Command{Type: CreatorInviteUser, Payload: InviteUserPayload{RoomID: roomID, InvitedUserID: userID}}
}

// NewMutation returns the command that submits m against a room.
func NewMutation(roomID string, m models.PendingMutation) Command {
	switch m.Kind {
	case models.MutationMove:
		t := ChangeTrackOrderDown
		if m.Direction() == models.MoveUp {
			t = ChangeTrackOrderUp
		}
		return Command{Type: t, Payload: ChangeTrackOrderPayload{
			RoomID: roomID, TrackID: m.TrackID, FromIndex: m.FromIndex, ToIndex: m.ToIndex,
		}}
	case models.MutationDelete:
		return Command{Type: DeleteTracks, Payload: TrackIDsPayload{RoomID: roomID, TrackIDs: []string{m.TrackID}}}
	default:
		return Command{Type: AddTracks, Payload: TrackIDsPayload{RoomID: roomID, TrackIDs: []string{m.TrackID}}}
	}
}

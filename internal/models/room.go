package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Track represents a track entry in a room's playlist. Identity is by ID.
type Track struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	ArtistName string        `json:"artistName"`
	Duration   time.Duration `json:"duration"`
}

// UserRelatedInformation holds the per-user view of a room.
type UserRelatedInformation struct {
	UserID          string `json:"userID"`
	HasBeenInvited  bool   `json:"userHasBeenInvited"`
	UserIsNotInRoom bool   `json:"userIsNotInRoom"`
	VotesCast       int    `json:"votesCast"`
}

// Room is the client-side mirror of a collaborative playlist.
type Room struct {
	ID                            string                  `json:"roomID"`
	Name                          string                  `json:"roomName"`
	IsOpen                        bool                    `json:"isOpen"`
	IsOpenOnlyInvitedUsersCanEdit bool                    `json:"isOpenOnlyInvitedUsersCanEdit"`
	CreatorUserID                 string                  `json:"roomCreatorUserID"`
	Tracks                        []Track                 `json:"tracks"`
	TotalDuration                 time.Duration           `json:"playlistTotalDuration"`
	UsersLength                   int                     `json:"usersLength"`
	UserRelatedInformation        *UserRelatedInformation `json:"userRelatedInformation"`
}

// RoomSummary is the reference to a room carried by invitations, leave callbacks and forced disconnections.
type RoomSummary struct {
	ID          string `json:"roomID"`
	Name        string `json:"roomName"`
	CreatorName string `json:"creatorName"`
	IsOpen      bool   `json:"isOpen"`
}

// NewRoom returns an empty room with the given id.
func NewRoom(id string) *Room {
	return &Room{ID: id, Tracks: []Track{}}
}

// Summary returns the [RoomSummary] for the room.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{ID: r.ID, Name: r.Name, IsOpen: r.IsOpen}
}

// IndexOf returns the position of the track with the given id, or -1.
func (r *Room) IndexOf(trackID string) int {
	return IndexOfTrack(r.Tracks, trackID)
}

// TrackIDs returns the ordered track ids.
func (r *Room) TrackIDs() []string {
	ids := make([]string, len(r.Tracks))
	for i, t := range r.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	c := *r
	c.Tracks = append([]Track(nil), r.Tracks...)
	if r.UserRelatedInformation != nil {
		info := *r.UserRelatedInformation
		c.UserRelatedInformation = &info
	}
	return &c
}

// Merge applies the fields carried by p onto the room. Fields absent from p are left untouched.
// The room id never changes.
func (r *Room) Merge(p RoomPatch) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.IsOpen != nil {
		r.IsOpen = *p.IsOpen
	}
	if p.IsOpenOnlyInvitedUsersCanEdit != nil {
		r.IsOpenOnlyInvitedUsersCanEdit = *p.IsOpenOnlyInvitedUsersCanEdit
	}
	if p.CreatorUserID != nil {
		r.CreatorUserID = *p.CreatorUserID
	}
	if p.Tracks != nil {
		r.Tracks = append([]Track(nil), (*p.Tracks)...)
	}
	if p.TotalDuration != nil {
		r.TotalDuration = *p.TotalDuration
	}
	if p.UsersLength != nil {
		r.UsersLength = *p.UsersLength
	}
	if p.UserRelatedInformation.Set {
		if p.UserRelatedInformation.Value == nil {
			r.UserRelatedInformation = nil
		} else {
			info := *p.UserRelatedInformation.Value
			r.UserRelatedInformation = &info
		}
	}
	if p.UserIsNotInRoom != nil {
		info := UserRelatedInformation{}
		if r.UserRelatedInformation != nil {
			info = *r.UserRelatedInformation
		}
		info.UserIsNotInRoom = *p.UserIsNotInRoom
		r.UserRelatedInformation = &info
	}
}

// RoomPatch is a partial authoritative room snapshot. A nil field was not carried by the server.
type RoomPatch struct {
	ID                            string                           `json:"roomID"`
	Name                          *string                          `json:"roomName,omitempty"`
	IsOpen                        *bool                            `json:"isOpen,omitempty"`
	IsOpenOnlyInvitedUsersCanEdit *bool                            `json:"isOpenOnlyInvitedUsersCanEdit,omitempty"`
	CreatorUserID                 *string                          `json:"roomCreatorUserID,omitempty"`
	Tracks                        *[]Track                         `json:"tracks,omitempty"`
	TotalDuration                 *time.Duration                   `json:"playlistTotalDuration,omitempty"`
	UsersLength                   *int                             `json:"usersLength,omitempty"`
	UserRelatedInformation        Nullable[UserRelatedInformation] `json:"userRelatedInformation,omitzero"`
	// UserIsNotInRoom is the membership flag of callbacks, applied on top of the user information already known.
	UserIsNotInRoom *bool `json:"-"`
}

// PatchFromRoom builds a patch carrying every field of r.
func PatchFromRoom(r Room) RoomPatch {
	tracks := append([]Track{}, r.Tracks...)
	p := RoomPatch{
		ID:                            r.ID,
		Name:                          &r.Name,
		IsOpen:                        &r.IsOpen,
		IsOpenOnlyInvitedUsersCanEdit: &r.IsOpenOnlyInvitedUsersCanEdit,
		CreatorUserID:                 &r.CreatorUserID,
		Tracks:                        &tracks,
		TotalDuration:                 &r.TotalDuration,
		UsersLength:                   &r.UsersLength,
	}
	p.UserRelatedInformation = Nullable[UserRelatedInformation]{Set: true, Value: r.UserRelatedInformation}
	return p
}

// WithUserIsNotInRoom returns a copy of p carrying the membership flag. When p carries user information the flag is
// folded into it; otherwise only the flag is merged and the rest of the known information is kept.
func (p RoomPatch) WithUserIsNotInRoom(notInRoom bool) RoomPatch {
	if p.UserRelatedInformation.Set && p.UserRelatedInformation.Value != nil {
		info := *p.UserRelatedInformation.Value
		info.UserIsNotInRoom = notInRoom
		p.UserRelatedInformation.Value = &info
		return p
	}
	p.UserIsNotInRoom = &notInRoom
	return p
}

// Nullable distinguishes a JSON field that was absent from one explicitly set to null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// IndexOfTrack returns the position of the track with the given id in tracks, or -1.
func IndexOfTrack(tracks []Track, trackID string) int {
	for i, t := range tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}

package models

import "fmt"

// MutationKind identifies the edit carried by a [PendingMutation].
type MutationKind int

const (
	MutationAdd MutationKind = iota + 1
	MutationMove
	MutationDelete
)

func (k MutationKind) String() string {
	switch k {
	case MutationAdd:
		return "add"
	case MutationMove:
		return "move"
	case MutationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// MoveDirection is the direction of a move mutation.
type MoveDirection int

const (
	MoveUp MoveDirection = iota
	MoveDown
)

func (d MoveDirection) String() string {
	if d == MoveUp {
		return "up"
	}
	return "down"
}

// PendingMutation is the single in-flight edit of a room. FromIndex and ToIndex are only meaningful for moves.
type PendingMutation struct {
	Kind      MutationKind `json:"kind"`
	TrackID   string       `json:"trackId"`
	FromIndex int          `json:"fromIndex,omitempty"`
	ToIndex   int          `json:"toIndex,omitempty"`
}

// AddMutation returns the mutation appending trackID.
func AddMutation(trackID string) PendingMutation {
	return PendingMutation{Kind: MutationAdd, TrackID: trackID}
}

// MoveMutation returns the mutation moving trackID from one position to another.
func MoveMutation(trackID string, from, to int) PendingMutation {
	return PendingMutation{Kind: MutationMove, TrackID: trackID, FromIndex: from, ToIndex: to}
}

// DeleteMutation returns the mutation removing trackID.
func DeleteMutation(trackID string) PendingMutation {
	return PendingMutation{Kind: MutationDelete, TrackID: trackID}
}

// Direction reports whether a move goes up or down the list.
func (m PendingMutation) Direction() MoveDirection {
	if m.ToIndex < m.FromIndex {
		return MoveUp
	}
	return MoveDown
}

func (m PendingMutation) String() string {
	if m.Kind == MutationMove {
		return fmt.Sprintf("move %s %d->%d", m.TrackID, m.FromIndex, m.ToIndex)
	}
	return fmt.Sprintf("%s %s", m.Kind, m.TrackID)
}

// Apply returns a new track list with the mutation applied. The input slice is not modified.
//
// Adding a track already present and removing or moving an absent track return an unchanged copy.
func (m PendingMutation) Apply(tracks []Track) []Track {
	out := append([]Track{}, tracks...)
	idx := IndexOfTrack(out, m.TrackID)

	switch m.Kind {
	case MutationAdd:
		if idx >= 0 {
			return out
		}
		return append(out, Track{ID: m.TrackID})
	case MutationDelete:
		if idx < 0 {
			return out
		}
		return append(out[:idx], out[idx+1:]...)
	case MutationMove:
		if idx < 0 || m.ToIndex < 0 || m.ToIndex >= len(out) {
			return out
		}
		t := out[idx]
		out = append(out[:idx], out[idx+1:]...)
		out = append(out[:m.ToIndex], append([]Track{t}, out[m.ToIndex:]...)...)
		return out
	}
	return out
}

package models

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

func ids(tracks []Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func tracksOf(ids ...string) []Track {
	out := make([]Track, len(ids))
	for i, id := range ids {
		out[i] = Track{ID: id, Title: "title " + id}
	}
	return out
}

func TestPendingMutationApply(t *testing.T) {
	tc := []struct {
		name     string
		mutation PendingMutation
		tracks   []string
		want     []string
	}{
		{name: "add appends", mutation: AddMutation("c"), tracks: []string{"a", "b"}, want: []string{"a", "b", "c"}},
		{name: "add existing is a no-op", mutation: AddMutation("a"), tracks: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "delete removes", mutation: DeleteMutation("a"), tracks: []string{"a", "b"}, want: []string{"b"}},
		{name: "delete absent is a no-op", mutation: DeleteMutation("z"), tracks: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "move down", mutation: MoveMutation("a", 0, 1), tracks: []string{"a", "b", "c"}, want: []string{"b", "a", "c"}},
		{name: "move up", mutation: MoveMutation("c", 2, 1), tracks: []string{"a", "b", "c"}, want: []string{"a", "c", "b"}},
		{name: "move to last position", mutation: MoveMutation("b", 1, 2), tracks: []string{"a", "b", "c"}, want: []string{"a", "c", "b"}},
		{name: "move out of range is a no-op", mutation: MoveMutation("a", 0, 5), tracks: []string{"a", "b"}, want: []string{"a", "b"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			input := tracksOf(tt.tracks...)
			got := ids(tt.mutation.Apply(input))
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !slices.Equal(ids(input), tt.tracks) {
				t.Errorf("input was modified: %v", ids(input))
			}
		})
	}

	t.Run("move keeps metadata", func(t *testing.T) {
		got := MoveMutation("a", 0, 1).Apply(tracksOf("a", "b"))
		if got[1].Title != "title a" {
			t.Errorf("expected moved track to keep its title, got %q", got[1].Title)
		}
	})
}

func TestRoomMerge(t *testing.T) {
	t.Run("only carried fields are replaced", func(t *testing.T) {
		room := &Room{ID: "r1", Name: "before", UsersLength: 3, Tracks: tracksOf("a")}

		var patch RoomPatch
		if err := json.Unmarshal([]byte(`{"roomID":"r1","usersLength":7}`), &patch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		room.Merge(patch)

		if room.UsersLength != 7 {
			t.Errorf("expected usersLength 7, got %d", room.UsersLength)
		}
		if room.Name != "before" {
			t.Errorf("expected name to be kept, got %q", room.Name)
		}
		if !slices.Equal(room.TrackIDs(), []string{"a"}) {
			t.Errorf("expected tracks to be kept, got %v", room.TrackIDs())
		}
	})

	t.Run("empty track list is carried", func(t *testing.T) {
		room := &Room{ID: "r1", Tracks: tracksOf("a", "b")}

		var patch RoomPatch
		if err := json.Unmarshal([]byte(`{"roomID":"r1","tracks":[]}`), &patch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		room.Merge(patch)

		if len(room.Tracks) != 0 {
			t.Errorf("expected empty tracks, got %v", room.TrackIDs())
		}
	})

	t.Run("explicit null clears user information", func(t *testing.T) {
		room := &Room{ID: "r1", UserRelatedInformation: &UserRelatedInformation{UserID: "u1"}}

		var patch RoomPatch
		if err := json.Unmarshal([]byte(`{"roomID":"r1","userRelatedInformation":null}`), &patch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		room.Merge(patch)

		if room.UserRelatedInformation != nil {
			t.Errorf("expected user information to be cleared, got %+v", room.UserRelatedInformation)
		}
	})

	t.Run("absent user information is kept", func(t *testing.T) {
		room := &Room{ID: "r1", UserRelatedInformation: &UserRelatedInformation{UserID: "u1"}}
		room.Merge(RoomPatch{ID: "r1"})

		if room.UserRelatedInformation == nil || room.UserRelatedInformation.UserID != "u1" {
			t.Errorf("expected user information to be kept, got %+v", room.UserRelatedInformation)
		}
	})

	t.Run("id never changes", func(t *testing.T) {
		room := &Room{ID: "r1"}
		room.Merge(PatchFromRoom(Room{ID: "other", Name: "n"}))

		if room.ID != "r1" {
			t.Errorf("expected id r1, got %s", room.ID)
		}
		if room.Name != "n" {
			t.Errorf("expected name n, got %s", room.Name)
		}
	})

	t.Run("merged tracks do not alias the patch", func(t *testing.T) {
		tracks := tracksOf("a")
		room := &Room{ID: "r1"}
		room.Merge(RoomPatch{ID: "r1", Tracks: &tracks})
		tracks[0].ID = "changed"

		if room.Tracks[0].ID != "a" {
			t.Errorf("expected merged tracks to be copied, got %s", room.Tracks[0].ID)
		}
	})
}

func TestRoomPatchWithUserIsNotInRoom(t *testing.T) {
	t.Run("flag alone keeps the known user information", func(t *testing.T) {
		room := &Room{ID: "r1", UserRelatedInformation: &UserRelatedInformation{UserID: "u1", HasBeenInvited: true, VotesCast: 3}}
		room.Merge(RoomPatch{ID: "r1"}.WithUserIsNotInRoom(true))

		want := UserRelatedInformation{UserID: "u1", HasBeenInvited: true, UserIsNotInRoom: true, VotesCast: 3}
		if room.UserRelatedInformation == nil || *room.UserRelatedInformation != want {
			t.Errorf("expected %+v, got %+v", want, room.UserRelatedInformation)
		}
	})

	t.Run("flag alone creates missing user information", func(t *testing.T) {
		room := NewRoom("r1")
		room.Merge(RoomPatch{ID: "r1"}.WithUserIsNotInRoom(true))

		if room.UserRelatedInformation == nil || !room.UserRelatedInformation.UserIsNotInRoom {
			t.Errorf("expected userIsNotInRoom, got %+v", room.UserRelatedInformation)
		}
	})

	t.Run("flag is folded into carried user information", func(t *testing.T) {
		p := RoomPatch{ID: "r1", UserRelatedInformation: Nullable[UserRelatedInformation]{
			Set:   true,
			Value: &UserRelatedInformation{UserID: "u2"},
		}}.WithUserIsNotInRoom(true)

		if p.UserIsNotInRoom != nil {
			t.Error("expected the flag to live inside the user information")
		}
		if v := p.UserRelatedInformation.Value; v == nil || v.UserID != "u2" || !v.UserIsNotInRoom {
			t.Errorf("expected folded flag, got %+v", v)
		}
	})
}

func TestCreationDraft(t *testing.T) {
	t.Run("Params", func(t *testing.T) {
		d := CreationDraft{Name: "  party  ", Visibility: VisibilityPublic, InvitationOnly: true, InitialTrackIDs: []string{"t1"}}
		p := d.Params()

		if p.Name != "party" {
			t.Errorf("expected trimmed name, got %q", p.Name)
		}
		if !p.IsOpen || !p.IsOpenOnlyInvitedUsersCanEdit {
			t.Errorf("expected open room restricted to invited editors, got %+v", p)
		}
	})

	t.Run("private rooms ignore the invitation toggle", func(t *testing.T) {
		p := CreationDraft{Name: "x", Visibility: VisibilityPrivate, InvitationOnly: true}.Params()
		if p.IsOpen || p.IsOpenOnlyInvitedUsersCanEdit {
			t.Errorf("expected closed room, got %+v", p)
		}
	})

	t.Run("ExportOptions requires both constraints", func(t *testing.T) {
		d := CreationDraft{Name: "x", Physical: &PhysicalConstraints{PlaceID: "p", Radius: 10}}
		opts := d.ExportOptions()

		if opts.HasPhysicalAndTimeConstraints {
			t.Error("expected constraints to be disabled without a time window")
		}
		if opts.MinimumScoreToBePlayed != 1 {
			t.Errorf("expected minimum score 1, got %d", opts.MinimumScoreToBePlayed)
		}
	})

	t.Run("ValidateConstraints", func(t *testing.T) {
		now := time.Now()
		place := &PhysicalConstraints{PlaceID: "p", Radius: 10}
		window := &TimeConstraints{StartsAt: now, EndsAt: now.Add(time.Hour)}
		tc := []struct {
			name    string
			draft   CreationDraft
			wantErr bool
		}{
			{name: "none", draft: CreationDraft{}},
			{name: "both", draft: CreationDraft{Physical: place, Time: window}},
			{name: "place only", draft: CreationDraft{Physical: place}, wantErr: true},
			{name: "time only", draft: CreationDraft{Time: window}, wantErr: true},
			{name: "reversed window", draft: CreationDraft{Physical: place, Time: &TimeConstraints{StartsAt: now, EndsAt: now}}, wantErr: true},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.draft.ValidateConstraints(); (err != nil) != tt.wantErr {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
			})
		}
	})
}

package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
	th "github.com/desertthunder/roomsync/internal/testing"
)

func sampleRoom() actors.RoomSnapshot {
	pending := models.AddMutation("track3")
	return actors.RoomSnapshot{
		Room: models.Room{
			ID:          "room1",
			Name:        "Road trip",
			IsOpen:      true,
			UsersLength: 3,
			Tracks: []models.Track{
				{ID: "track1", Title: "Song One", ArtistName: "Artist One", Duration: 3 * time.Minute},
				{ID: "track2", Title: "Song, Two", ArtistName: "Artist Two", Duration: 4*time.Minute + 5*time.Second},
			},
		},
		State:    actors.RoomAddingTrack,
		Stage:    actors.StageWaitingForServerAcknowledgement,
		Pending:  &pending,
		FreezeUI: true,
	}
}

func TestExporters(t *testing.T) {
	t.Run("RoomToText", func(t *testing.T) {
		output := string(RoomToText(sampleRoom()))

		for _, want := range []string{
			"Room: Road trip (room1)",
			"Visibility: public",
			"Users: 3",
			"State: addingTrack.waitingForServerAcknowledgement",
			"Pending: add track3",
			"Tracks: 2 [7:05]",
			"1. Artist One - Song One",
			"2. Artist Two - Song, Two",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output, got:\n%s", want, output)
			}
		}
	})

	t.Run("RoomToMarkdown", func(t *testing.T) {
		t.Run("with mutation in flight", func(t *testing.T) {
			output := string(RoomToMarkdown(sampleRoom()))

			if !strings.HasPrefix(output, "# Road trip\n") {
				t.Errorf("expected title heading, got:\n%s", output)
			}
			if !strings.Contains(output, "> Mutation in flight: addingTrack.waitingForServerAcknowledgement") {
				t.Errorf("expected mutation notice, got:\n%s", output)
			}
			if !strings.Contains(output, "2. Artist Two - Song, Two [4:05]") {
				t.Errorf("expected numbered track with duration, got:\n%s", output)
			}
		})

		t.Run("idle and untitled", func(t *testing.T) {
			snap := actors.RoomSnapshot{Room: *models.NewRoom("room2")}
			output := string(RoomToMarkdown(snap))

			if !strings.HasPrefix(output, "# Untitled room\n") {
				t.Errorf("expected fallback title, got:\n%s", output)
			}
			if strings.Contains(output, "Mutation in flight") {
				t.Errorf("expected no mutation notice for idle room, got:\n%s", output)
			}
			if !strings.Contains(output, "**Visibility**: private") {
				t.Errorf("expected private visibility, got:\n%s", output)
			}
		})
	})

	t.Run("RoomToCSV", func(t *testing.T) {
		data, err := RoomToCSV(sampleRoom())
		if err != nil {
			t.Fatalf("RoomToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "Room,Position,ID,Title,Artist,Duration" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[2] != `room1,2,track2,"Song, Two",Artist Two,4:05` {
			t.Errorf("expected quoted title, got %q", lines[2])
		}
	})

	t.Run("RoomsToJSON", func(t *testing.T) {
		data, err := RoomsToJSON([]actors.RoomSnapshot{sampleRoom()}, false)
		if err != nil {
			t.Fatalf("RoomsToJSON failed: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded[0]["state"] != "addingTrack" || decoded[0]["freezeUi"] != true {
			t.Errorf("unexpected JSON %s", data)
		}

		empty, _ := RoomsToJSON(nil, false)
		if string(empty) != "[]" {
			t.Errorf("expected [], got %s", empty)
		}
	})
}

func TestRender(t *testing.T) {
	rooms := []actors.RoomSnapshot{sampleRoom(), {Room: *models.NewRoom("room2")}}

	t.Run("text sections", func(t *testing.T) {
		data, err := Render(FormatText, rooms)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if strings.Count(string(data), "Room: ") != 2 {
			t.Errorf("expected two sections, got:\n%s", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Render(Format("xml"), rooms); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rooms.md")
		if err := WriteExport(FormatMarkdown, rooms, path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Untitled room") {
			t.Errorf("expected second room in file, got:\n%s", content)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"txt", FormatText, false},
		{"MD", FormatMarkdown, false},
		{"csv", FormatCSV, false},
		{"json", FormatJSON, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{3*time.Minute + 5*time.Second, "3:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{1500 * time.Millisecond, "0:02"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v): expected %q, got %q", tt.d, tt.want, got)
		}
	}
}

// package formatter renders room snapshots as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// Format is an output format understood by [Render].
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat parses a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "txt", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Render renders every room in the given format. Text and Markdown sections are separated by a blank line;
// CSV output carries a single header row.
func Render(format Format, rooms []actors.RoomSnapshot) ([]byte, error) {
	switch format {
	case FormatJSON:
		return RoomsToJSON(rooms, true)
	case FormatCSV:
		return RoomsToCSV(rooms)
	case FormatText, FormatMarkdown:
		render := RoomToText
		if format == FormatMarkdown {
			render = RoomToMarkdown
		}
		var buf bytes.Buffer
		for i, room := range rooms {
			if i > 0 {
				buf.WriteString("\n")
			}
			buf.Write(render(room))
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// FormatDuration formats d as m:ss, or h:mm:ss from one hour up.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// totalDuration prefers the server's aggregate and falls back to the sum of the tracks.
func totalDuration(room models.Room) time.Duration {
	if room.TotalDuration > 0 {
		return room.TotalDuration
	}
	var d time.Duration
	for _, t := range room.Tracks {
		d += t.Duration
	}
	return d
}

func visibility(room models.Room) string {
	v := models.VisibilityPrivate
	if room.IsOpen {
		v = models.VisibilityPublic
	}
	if room.IsOpenOnlyInvitedUsersCanEdit {
		return v.String() + ", invited users edit"
	}
	return v.String()
}

// RoomToText renders one room as plain text.
func RoomToText(snap actors.RoomSnapshot) []byte {
	var buf bytes.Buffer
	room := snap.Room

	fmt.Fprintf(&buf, "Room: %s (%s)\n", displayName(room), room.ID)
	fmt.Fprintf(&buf, "Visibility: %s\n", visibility(room))
	fmt.Fprintf(&buf, "Users: %d\n", room.UsersLength)
	fmt.Fprintf(&buf, "State: %s\n", snap.StateName())
	if snap.Pending != nil {
		fmt.Fprintf(&buf, "Pending: %s\n", snap.Pending)
	}
	fmt.Fprintf(&buf, "Tracks: %d [%s]\n\n", len(room.Tracks), FormatDuration(totalDuration(room)))

	for i, t := range room.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, t.ArtistName, t.Title)
	}
	return buf.Bytes()
}

// RoomToMarkdown renders one room as a Markdown section.
func RoomToMarkdown(snap actors.RoomSnapshot) []byte {
	var buf bytes.Buffer
	room := snap.Room

	fmt.Fprintf(&buf, "# %s\n\n", displayName(room))
	fmt.Fprintf(&buf, "**Room**: `%s`\n", room.ID)
	fmt.Fprintf(&buf, "**Visibility**: %s\n", visibility(room))
	fmt.Fprintf(&buf, "**Users**: %d\n", room.UsersLength)
	fmt.Fprintf(&buf, "**Tracks**: %d (%s)\n", len(room.Tracks), FormatDuration(totalDuration(room)))
	if snap.FreezeUI {
		fmt.Fprintf(&buf, "\n> Mutation in flight: %s\n", snap.StateName())
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, t := range room.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, t.ArtistName, t.Title, FormatDuration(t.Duration))
	}
	return buf.Bytes()
}

// RoomToCSV renders one room's tracks with columns: Room, Position, ID, Title, Artist, Duration.
func RoomToCSV(snap actors.RoomSnapshot) ([]byte, error) {
	return RoomsToCSV([]actors.RoomSnapshot{snap})
}

// RoomsToCSV renders the tracks of every room under one header row.
func RoomsToCSV(rooms []actors.RoomSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Room", "Position", "ID", "Title", "Artist", "Duration"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, snap := range rooms {
		for i, t := range snap.Room.Tracks {
			record := []string{
				snap.Room.ID,
				strconv.Itoa(i + 1),
				t.ID,
				t.Title,
				t.ArtistName,
				FormatDuration(t.Duration),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RoomsToJSON encodes the snapshots. A nil slice encodes as [].
func RoomsToJSON(rooms []actors.RoomSnapshot, pretty bool) ([]byte, error) {
	if rooms == nil {
		rooms = []actors.RoomSnapshot{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(rooms, "", "  ")
	} else {
		data, err = json.Marshal(rooms)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rooms: %w", err)
	}
	return data, nil
}

// WriteExport renders rooms and writes them to path.
func WriteExport(format Format, rooms []actors.RoomSnapshot, path string) error {
	data, err := Render(format, rooms)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}

func displayName(room models.Room) string {
	if room.Name == "" {
		return "Untitled room"
	}
	return room.Name
}

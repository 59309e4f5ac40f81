package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/formatter"
	"github.com/desertthunder/roomsync/internal/models"
)

var (
	_ list.Item = roomItem{}
	_ list.Item = trackItem{}
)

// roomItem wraps [actors.RoomSnapshot] to implement [list.Item].
type roomItem struct {
	snap actors.RoomSnapshot
}

func (i roomItem) FilterValue() string { return i.snap.Room.Name }
func (i roomItem) Title() string {
	if i.snap.Room.Name == "" {
		return i.snap.Room.ID
	}
	return i.snap.Room.Name
}
func (i roomItem) Description() string {
	desc := fmt.Sprintf("%d tracks • %d users", len(i.snap.Room.Tracks), i.snap.Room.UsersLength)
	if i.snap.FreezeUI {
		desc = fmt.Sprintf("%s • syncing", desc)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	if i.track.Title == "" {
		return i.track.ID
	}
	return i.track.Title
}
func (i trackItem) Description() string {
	desc := i.track.ArtistName
	if i.track.Duration > 0 {
		desc = fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.track.Duration))
	}
	return desc
}

func roomItems(rooms []actors.RoomSnapshot) []list.Item {
	items := make([]list.Item, len(rooms))
	for i, r := range rooms {
		items[i] = roomItem{snap: r}
	}
	return items
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

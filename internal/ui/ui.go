package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/models"
)

// maxNotifications bounds the toasts kept on screen.
const maxNotifications = 3

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RoomListView ViewState = iota
	RoomView
	WizardView
)

// inputPurpose is what the text input is collecting.
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputJoinRoom
	inputAddTrack
	inputRoomName
)

// Controller is the command side of [actors.Supervisor] used by the TUI.
type Controller interface {
	CreateRoom(initialTrackIDs ...string)
	StartMtvExport(roomID string)
	SetRoomName(name string)
	SetOpeningStatus(v models.Visibility)
	SetInvitationOnly(enabled bool)
	NextStep()
	PreviousStep()
	ConfirmCreation()
	CancelCreation()
	JoinRoom(roomID string)
	AddTrack(roomID, trackID string)
	MoveTrackUp(roomID, trackID string)
	MoveTrackDown(roomID, trackID string)
	DeleteTrack(roomID, trackID string)
	LeaveRoom(roomID string)
	SetCurrentlyDisplayedRoom(roomID string)
	DisplayRoomView(roomID string)
	AcceptInvitation()
	IgnoreInvitation()
}

// Model represents the TUI application state.
type Model struct {
	ctl           Controller
	view          ViewState
	returnTo      ViewState
	snapshot      actors.View
	roomID        string
	step          models.WizardStep
	invitation    *models.RoomSummary
	notifications []models.Notification
	roomList      list.Model
	trackList     list.Model
	input         textinput.Model
	purpose       inputPurpose
	follow        string
	width         int
	height        int
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model sending commands to ctl.
func NewModel(ctl Controller) *Model {
	input := textinput.New()
	input.CharLimit = 128

	return &Model{
		ctl:       ctl,
		view:      RoomListView,
		roomList:  newList("Rooms"),
		trackList: newList("Tracks"),
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.roomList.SetSize(msg.Width-4, msg.Height-10)
		m.trackList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && (m.purpose == inputNone || msg.String() == "ctrl+c") {
			return m, tea.Quit
		}
		if m.invitation != nil && m.purpose == inputNone {
			return m.handleInvitationKeys(msg)
		}
		if m.purpose != inputNone {
			return m.handleInputKeys(msg)
		}
		switch m.view {
		case RoomListView:
			return m.handleRoomListKeys(msg)
		case RoomView:
			return m.handleRoomKeys(msg)
		case WizardView:
			return m.handleWizardKeys(msg)
		}

	case Msg:
		return m.handleSupervisorMsg(msg)
	}

	return m, nil
}

func (m *Model) handleSupervisorMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgViewChanged:
		m.snapshot = msg.data.(actors.View)
		m.refreshLists()

	case MsgOpenCreationStep:
		if m.view != WizardView {
			m.returnTo = m.view
		}
		m.view = WizardView
		m.step = msg.data.(models.WizardStep)
		if m.step == models.StepRoomName {
			var name string
			if wz := m.snapshot.Wizard; wz != nil {
				name = wz.Draft.Name
			}
			return m, m.beginInput(inputRoomName, "Room name", name)
		}
		m.endInput()

	case MsgCloseCreation:
		m.endInput()
		m.view = m.returnTo
		if m.view == RoomView && m.roomID == "" {
			m.view = RoomListView
		}

	case MsgOpenRoom:
		m.endInput()
		m.roomID = msg.data.(string)
		m.view = RoomView
		m.refreshLists()

	case MsgNavigateAwayFromRoom:
		if s := msg.data.(models.RoomSummary); s.ID == m.roomID {
			m.closeRoom()
		}

	case MsgNavigateBack:
		if m.view == RoomView {
			m.closeRoom()
		}

	case MsgDisplayInvitation:
		s := msg.data.(models.RoomSummary)
		m.invitation = &s

	case MsgHideInvitation:
		m.invitation = nil

	case MsgNotification:
		m.notifications = append(m.notifications, msg.data.(models.Notification))
		if n := len(m.notifications); n > maxNotifications {
			m.notifications = m.notifications[n-maxNotifications:]
		}
	}
	return m, nil
}

func (m *Model) handleInvitationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.ctl.AcceptInvitation()
	case key.Matches(msg, m.keys.no):
		m.ctl.IgnoreInvitation()
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		purpose := m.purpose
		m.endInput()
		if purpose == inputRoomName {
			m.ctl.CancelCreation()
		}
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		purpose := m.purpose
		switch purpose {
		case inputJoinRoom:
			if value == "" {
				return m, nil
			}
			m.ctl.JoinRoom(value)
		case inputAddTrack:
			if value == "" {
				return m, nil
			}
			m.follow = value
			m.ctl.AddTrack(m.roomID, value)
		case inputRoomName:
			if value == "" {
				return m, nil
			}
			m.ctl.SetRoomName(value)
			m.ctl.NextStep()
		}
		m.endInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleRoomListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.roomList.SelectedItem().(roomItem); ok {
			m.ctl.DisplayRoomView(item.snap.Room.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.create):
		m.ctl.CreateRoom()
		return m, nil
	case key.Matches(msg, m.keys.join):
		return m, m.beginInput(inputJoinRoom, "Room id", "")
	}

	var cmd tea.Cmd
	m.roomList, cmd = m.roomList.Update(msg)
	return m, cmd
}

func (m *Model) handleRoomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap, ok := m.snapshot.Room(m.roomID)

	switch {
	case key.Matches(msg, m.keys.back):
		m.closeRoom()
		m.ctl.SetCurrentlyDisplayedRoom("")
		return m, nil
	case key.Matches(msg, m.keys.leave):
		m.ctl.LeaveRoom(m.roomID)
		return m, nil
	case key.Matches(msg, m.keys.export):
		m.ctl.StartMtvExport(m.roomID)
		return m, nil
	case key.Matches(msg, m.keys.add, m.keys.moveUp, m.keys.moveDown, m.keys.remove):
		if !ok || snap.FreezeUI {
			return m, nil
		}
		return m, m.mutate(msg)
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// mutate issues a track mutation for the selected track.
func (m *Model) mutate(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.add) {
		return m.beginInput(inputAddTrack, "Track id", "")
	}

	item, ok := m.trackList.SelectedItem().(trackItem)
	if !ok {
		return nil
	}
	id := item.track.ID
	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.follow = id
		m.ctl.MoveTrackUp(m.roomID, id)
	case key.Matches(msg, m.keys.moveDown):
		m.follow = id
		m.ctl.MoveTrackDown(m.roomID, id)
	case key.Matches(msg, m.keys.remove):
		m.ctl.DeleteTrack(m.roomID, id)
	}
	return nil
}

func (m *Model) handleWizardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	wz := m.snapshot.Wizard

	switch {
	case key.Matches(msg, m.keys.back):
		if m.step == models.StepRoomName {
			m.ctl.CancelCreation()
		} else {
			m.ctl.PreviousStep()
		}
	case key.Matches(msg, m.keys.enter):
		m.ctl.NextStep()
	case key.Matches(msg, m.keys.toggle) && m.step == models.StepOpeningStatus && wz != nil:
		next := models.VisibilityPrivate
		if wz.Draft.Visibility == models.VisibilityPrivate {
			next = models.VisibilityPublic
		}
		m.ctl.SetOpeningStatus(next)
	case key.Matches(msg, m.keys.invite) && m.step == models.StepOpeningStatus && wz != nil:
		m.ctl.SetInvitationOnly(!wz.Draft.InvitationOnly)
	case key.Matches(msg, m.keys.yes) && m.step == models.StepConfirmation:
		m.ctl.ConfirmCreation()
	}
	return m, nil
}

func (m *Model) beginInput(purpose inputPurpose, placeholder, value string) tea.Cmd {
	m.purpose = purpose
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.purpose = inputNone
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) closeRoom() {
	m.roomID = ""
	m.follow = ""
	m.view = RoomListView
}

// refreshLists rebuilds the lists from the latest view, keeping the cursor on a followed track.
func (m *Model) refreshLists() {
	m.roomList.SetItems(roomItems(m.snapshot.Rooms))

	snap, ok := m.snapshot.Room(m.roomID)
	if !ok {
		m.trackList.SetItems(nil)
		return
	}
	m.trackList.Title = fmt.Sprintf("Tracks in '%s'", roomItem{snap: snap}.Title())
	m.trackList.SetItems(trackItems(snap.Room.Tracks))

	if m.follow != "" {
		if i := snap.Room.IndexOf(m.follow); i >= 0 {
			m.trackList.Select(i)
		}
		if !snap.FreezeUI {
			m.follow = ""
		}
	}
	if n := len(snap.Room.Tracks); n > 0 && m.trackList.Index() >= n {
		m.trackList.Select(n - 1)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case RoomListView:
		body = m.renderRoomList()
	case RoomView:
		body = m.renderRoom()
	case WizardView:
		body = m.renderWizard()
	}

	if m.invitation != nil {
		body = fmt.Sprintf("%s\n\n%s", body, m.renderInvitation())
	}
	if toasts := m.renderNotifications(); toasts != "" {
		body = fmt.Sprintf("%s\n\n%s", body, toasts)
	}
	return body
}

func (m *Model) renderRoomList() string {
	var b strings.Builder
	if len(m.snapshot.Rooms) == 0 {
		b.WriteString(styles.title.Render("Rooms"))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("No open rooms yet."))
	} else {
		b.WriteString(m.roomList.View())
	}

	if m.purpose == inputJoinRoom {
		fmt.Fprintf(&b, "\n\nJoin room: %s", m.input.View())
		return b.String()
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.create, m.keys.join, m.keys.quit}
	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderRoom() string {
	snap, ok := m.snapshot.Room(m.roomID)
	if !ok {
		return styles.warn.Render(fmt.Sprintf("Loading room %s...", m.roomID))
	}

	var b strings.Builder
	room := snap.Room
	fmt.Fprintf(&b, "%s\n", styles.title.Render(roomItem{snap: snap}.Title()))
	visibility := models.VisibilityPrivate
	if room.IsOpen {
		visibility = models.VisibilityPublic
	}
	fmt.Fprintf(&b, "%s • %d users", visibility, room.UsersLength)
	if snap.FreezeUI {
		fmt.Fprintf(&b, "  %s", styles.frozen.Render("⟳ syncing ("+snap.StateName()+")"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.trackList.View())

	if m.purpose == inputAddTrack {
		fmt.Fprintf(&b, "\n\nAdd track: %s", m.input.View())
		return b.String()
	}

	helpKeys := []key.Binding{m.keys.add, m.keys.moveUp, m.keys.moveDown, m.keys.remove, m.keys.leave, m.keys.export, m.keys.back}
	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderWizard() string {
	wz := m.snapshot.Wizard
	if wz == nil {
		return styles.help.Render("Opening creation wizard...")
	}

	title := "Create a room"
	if wz.Draft.Variant == models.VariantMtvExport {
		title = "Export to MTV"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	var helpKeys []key.Binding
	switch m.step {
	case models.StepRoomName:
		fmt.Fprintf(&b, "Name: %s", m.input.View())
		helpKeys = []key.Binding{m.keys.enter, m.keys.back}

	case models.StepOpeningStatus:
		fmt.Fprintf(&b, "Name: %s\nVisibility: %s\n", wz.Draft.Name, wz.Draft.Visibility)
		if wz.Draft.Visibility == models.VisibilityPublic {
			fmt.Fprintf(&b, "Only invited users can edit: %s\n", yesNo(wz.Draft.InvitationOnly))
			helpKeys = []key.Binding{m.keys.toggle, m.keys.invite, m.keys.enter, m.keys.back}
		} else {
			helpKeys = []key.Binding{m.keys.toggle, m.keys.enter, m.keys.back}
		}

	case models.StepConfirmation, models.StepConfirmed:
		fmt.Fprintf(&b, "Name: %s\nVisibility: %s\n", wz.Draft.Name, wz.Draft.Visibility)
		if wz.Draft.Visibility == models.VisibilityPublic {
			fmt.Fprintf(&b, "Only invited users can edit: %s\n", yesNo(wz.Draft.InvitationOnly))
		}
		if n := len(wz.Tracks); n > 0 {
			fmt.Fprintf(&b, "\nInitial tracks (%d):\n", n)
			for i, t := range wz.Tracks {
				fmt.Fprintf(&b, "  %d. %s - %s\n", i+1, t.ArtistName, t.Title)
			}
		}
		if wz.CanConfirm {
			b.WriteString("\n" + styles.ok.Render("Ready to create"))
			helpKeys = []key.Binding{m.keys.yes, m.keys.back}
		} else {
			b.WriteString("\n" + styles.help.Render(wz.Phase.String()+"..."))
			helpKeys = []key.Binding{m.keys.back}
		}
	}

	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderInvitation() string {
	s := m.invitation
	text := fmt.Sprintf("%s invited you to %q", s.CreatorName, s.Name)
	if s.CreatorName == "" {
		text = fmt.Sprintf("You were invited to %q", s.Name)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return styles.box.Render(fmt.Sprintf("%s\n\n%s", styles.title.Render("Invitation"), text+"\n"+helpView))
}

func (m *Model) renderNotifications() string {
	lines := make([]string, 0, len(m.notifications))
	for _, n := range m.notifications {
		text := n.Title
		if n.Message != "" {
			text = fmt.Sprintf("%s: %s", n.Title, n.Message)
		}
		switch n.Level {
		case models.LevelError:
			lines = append(lines, styles.err.Render("✗ "+text))
		case models.LevelWarning:
			lines = append(lines, styles.warn.Render("! "+text))
		case models.LevelSuccess:
			lines = append(lines, styles.ok.Render("✓ "+text))
		default:
			lines = append(lines, styles.help.Render(text))
		}
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package actors

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/metrics"
	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/services"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/desertthunder/roomsync/internal/transport"
)

const (
	DefaultMutationDebounce     = 200 * time.Millisecond
	DefaultConfirmationDebounce = 800 * time.Millisecond
	DefaultInboxSize            = 256
)

// Options configures a [Supervisor]. Only Transport is required.
type Options struct {
	Transport transport.Transport
	Navigator Navigator
	Notifier  Notifier
	Observer  Observer
	Tracks    services.TrackService
	Clock     clock.Clock
	Logger    *log.Logger
	Metrics   *metrics.Metrics

	MutationDebounce     time.Duration
	ConfirmationDebounce time.Duration
	// AcknowledgementTimeout fails a mutation the server never answers. Zero waits forever.
	AcknowledgementTimeout time.Duration
	InboxSize              int
	// Strict panics on events the client does not understand.
	Strict bool
}

// OptionsFromConfig fills the tuning fields of Options from the sync config.
func OptionsFromConfig(cfg *shared.Config) Options {
	return Options{
		MutationDebounce:       cfg.Sync.MutationDebounce,
		ConfirmationDebounce:   cfg.Sync.ConfirmationDebounce,
		AcknowledgementTimeout: cfg.Sync.AcknowledgementTimeout,
		InboxSize:              cfg.Sync.InboxSize,
		Strict:                 cfg.Strict(),
	}
}

// Supervisor owns every room actor, the creation wizard and the invitation handler, and is the only consumer
// of the transport.
//
// Command methods are safe to call from any goroutine. They are queued and applied by [Supervisor.Run].
type Supervisor struct {
	transport transport.Transport
	nav       Navigator
	notifier  Notifier
	observer  Observer
	tracks    services.TrackService
	clock     clock.Clock
	logger    *log.Logger
	metrics   *metrics.Metrics
	opts      Options

	registry         *registry
	wizard           *CreationWizard
	invitation       InvitationHandler
	displayed        string
	pendingCreations []string
	timers           *timers
	runCtx           context.Context

	inbox chan func()
	done  chan struct{}

	mu   sync.RWMutex
	view View
}

// NewSupervisor builds a supervisor from opts, filling defaults for everything but the transport.
func NewSupervisor(opts Options) *Supervisor {
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.MutationDebounce == 0 {
		opts.MutationDebounce = DefaultMutationDebounce
	}
	if opts.ConfirmationDebounce == 0 {
		opts.ConfirmationDebounce = DefaultConfirmationDebounce
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = DefaultInboxSize
	}

	s := &Supervisor{
		transport: opts.Transport,
		nav:       opts.Navigator,
		notifier:  opts.Notifier,
		observer:  opts.Observer,
		tracks:    opts.Tracks,
		clock:     opts.Clock,
		logger:    shared.WithLogger(opts.Logger, "component", "supervisor"),
		metrics:   opts.Metrics,
		opts:      opts,
		registry:  newRegistry(),
		runCtx:    context.Background(),
		inbox:     make(chan func(), opts.InboxSize),
		done:      make(chan struct{}),
	}
	s.timers = newTimers(opts.Clock, s.post)
	return s
}

// Run consumes transport events and queued commands until ctx is cancelled or the transport closes.
// Pending timers are stopped on return.
func (s *Supervisor) Run(ctx context.Context) error {
	s.runCtx = ctx
	defer close(s.done)
	defer s.timers.stopAll()

	s.logger.Info("supervisor started")
	events := s.transport.Events()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("supervisor stopped", "reason", ctx.Err())
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				s.logger.Warn("transport closed")
				return shared.ErrTransportClosed
			}
			s.handleEvent(ev)
			s.publish()
		case fn := <-s.inbox:
			fn()
			s.publish()
		}
	}
}

// post queues fn for the loop. It is dropped once the loop has exited.
func (s *Supervisor) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// CreateRoom opens the creation wizard seeded with initial tracks. It does nothing while a wizard is open.
func (s *Supervisor) CreateRoom(initialTrackIDs ...string) {
	ids := append([]string{}, initialTrackIDs...)
	s.post(func() {
		s.openWizard(models.CreationDraft{Variant: models.VariantRoom, InitialTrackIDs: ids})
	})
}

// StartMtvExport opens the creation wizard to export an open room to the voting variant.
func (s *Supervisor) StartMtvExport(roomID string) {
	s.post(func() {
		a, ok := s.registry.get(roomID)
		if !ok {
			s.logger.Debug("export requested for unknown room", "room", roomID)
			return
		}
		visibility := models.VisibilityPrivate
		if a.room.IsOpen {
			visibility = models.VisibilityPublic
		}
		s.openWizard(models.CreationDraft{
			Variant:         models.VariantMtvExport,
			SourceRoomID:    roomID,
			Name:            a.room.Name,
			Visibility:      visibility,
			InitialTrackIDs: a.room.TrackIDs(),
			MinimumVotes:    1,
		})
	})
}

func (s *Supervisor) SetRoomName(name string) { s.postWizard(setRoomName{name: name}) }

func (s *Supervisor) SetOpeningStatus(v models.Visibility) { s.postWizard(setOpeningStatus{visibility: v}) }

func (s *Supervisor) SetInvitationOnly(enabled bool) { s.postWizard(setInvitationOnly{enabled: enabled}) }

func (s *Supervisor) SetPhysicalConstraints(c *models.PhysicalConstraints) {
	s.postWizard(setPhysical{constraints: c})
}

func (s *Supervisor) SetTimeConstraints(c *models.TimeConstraints) { s.postWizard(setTime{constraints: c}) }

func (s *Supervisor) SetMinimumVotes(n int) { s.postWizard(setMinimumVotes{votes: n}) }

func (s *Supervisor) NextStep() { s.postWizard(nextStep{}) }

func (s *Supervisor) PreviousStep() { s.postWizard(previousStep{}) }

// ConfirmCreation finishes the wizard once the confirmation step is ready.
func (s *Supervisor) ConfirmCreation() { s.postWizard(confirmCreation{}) }

// CancelCreation discards the wizard and its draft.
func (s *Supervisor) CancelCreation() {
	s.post(func() {
		if s.wizard == nil {
			return
		}
		s.closeWizard()
		s.logger.Debug("creation cancelled")
	})
}

// JoinRoom asks the server to join a room. The actor is spawned by the join callback.
func (s *Supervisor) JoinRoom(roomID string) {
	s.post(func() { s.exec([]effect{emitCommand{cmd: transport.NewJoinRoom(roomID)}}) })
}

func (s *Supervisor) AddTrack(roomID, trackID string) {
	s.post(func() { s.routeCommand(roomID, addTrack{trackID: trackID}) })
}

func (s *Supervisor) MoveTrackUp(roomID, trackID string) {
	s.post(func() { s.routeCommand(roomID, moveTrack{trackID: trackID, direction: models.MoveUp}) })
}

func (s *Supervisor) MoveTrackDown(roomID, trackID string) {
	s.post(func() { s.routeCommand(roomID, moveTrack{trackID: trackID, direction: models.MoveDown}) })
}

func (s *Supervisor) DeleteTrack(roomID, trackID string) {
	s.post(func() { s.routeCommand(roomID, deleteTrack{trackID: trackID}) })
}

// LeaveRoom asks the server to leave a room. The actor is torn down by the leave callback.
func (s *Supervisor) LeaveRoom(roomID string) {
	s.post(func() { s.exec([]effect{emitCommand{cmd: transport.NewLeaveRoom(roomID)}}) })
}

// ExportToMtv emits an export command directly, bypassing the wizard.
func (s *Supervisor) ExportToMtv(roomID string, opts models.MtvExportOptions) {
	s.post(func() { s.exec([]effect{emitCommand{cmd: transport.NewExportToMtv(roomID, opts)}}) })
}

func (s *Supervisor) InviteUser(roomID, userID string) {
	s.post(func() { s.exec([]effect{emitCommand{cmd: transport.NewInviteUser(roomID, userID)}}) })
}

// SetCurrentlyDisplayedRoom records the focused room. An empty id clears it.
func (s *Supervisor) SetCurrentlyDisplayedRoom(roomID string) {
	s.post(func() { s.displayed = roomID })
}

// DisplayRoomView focuses a room, spawning its actor if needed, and requests its context from the server.
func (s *Supervisor) DisplayRoomView(roomID string) {
	s.post(func() { s.displayRoomView(models.RoomSummary{ID: roomID}) })
}

// AcceptInvitation closes the displayed invitation and opens its room.
func (s *Supervisor) AcceptInvitation() {
	s.post(func() {
		summary, ok := s.invitation.resolve()
		if !ok {
			return
		}
		s.nav.HideInvitation()
		s.displayRoomView(summary)
	})
}

// IgnoreInvitation closes the displayed invitation.
func (s *Supervisor) IgnoreInvitation() {
	s.post(func() {
		if _, ok := s.invitation.resolve(); ok {
			s.nav.HideInvitation()
		}
	})
}

func (s *Supervisor) postWizard(msg any) {
	s.post(func() { s.sendWizard(msg) })
}

func (s *Supervisor) openWizard(draft models.CreationDraft) {
	if s.wizard != nil {
		s.logger.Debug("creation wizard already open", "err", shared.ErrWizardActive)
		return
	}
	s.wizard = newCreationWizard(draft, s.opts.ConfirmationDebounce)
	s.logger.Info("creation wizard opened", "variant", draft.Variant)
	s.exec(s.wizard.open())
}

func (s *Supervisor) closeWizard() {
	s.timers.cancel(wizardTimerKey)
	s.wizard = nil
	s.nav.CloseCreation()
}

func (s *Supervisor) sendWizard(msg any) {
	if s.wizard == nil {
		return
	}
	s.exec(s.wizard.Send(msg))
}

// routeCommand forwards a UI edit to the room actor. Edits for unknown rooms are dropped.
func (s *Supervisor) routeCommand(roomID string, msg any) {
	if !s.sendRoom(roomID, msg) {
		s.logger.Debug("command for unknown room", "room", roomID, "err", shared.ErrRoomNotFound)
	}
}

// sendRoom dispatches msg to the actor of roomID and executes its effects. It reports whether the actor exists.
func (s *Supervisor) sendRoom(roomID string, msg any) bool {
	a, ok := s.registry.get(roomID)
	if !ok {
		return false
	}
	s.exec(a.Send(msg))
	return true
}

func (s *Supervisor) displayRoomView(summary models.RoomSummary) {
	if !s.registry.exists(summary.ID) {
		room := models.NewRoom(summary.ID)
		room.Name = summary.Name
		room.IsOpen = summary.IsOpen
		s.spawn(room)
	}
	s.displayed = summary.ID
	s.exec([]effect{emitCommand{cmd: transport.NewGetContext(summary.ID)}})
	s.nav.OpenRoom(summary.ID)
}

func (s *Supervisor) spawn(room *models.Room) *RoomActor {
	a := newRoomActor(room, s.opts.MutationDebounce, s.opts.AcknowledgementTimeout, s.logger)
	s.registry.add(a)
	s.metrics.IncRoomsSpawned()
	s.logger.Info("room spawned", "room", room.ID, "rooms", s.registry.len())
	return a
}

// teardown removes the actor and stops its timers.
func (s *Supervisor) teardown(roomID string) {
	if _, ok := s.registry.remove(roomID); !ok {
		return
	}
	s.timers.cancelPrefix(roomTimerPrefix(roomID))
	if s.displayed == roomID {
		s.displayed = ""
	}
	s.metrics.IncRoomsTornDown()
	s.logger.Info("room torn down", "room", roomID, "rooms", s.registry.len())
}

// exec runs effects in order. Effects may dispatch further messages, which run to completion first.
func (s *Supervisor) exec(effects []effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case submitMutation:
			s.metrics.IncMutationsStarted(e.mutation.Kind.String())
			if err := s.emit(transport.NewMutation(e.roomID, e.mutation)); err != nil {
				s.sendRoom(e.roomID, mutationSendFailed{err: err})
			} else {
				s.sendRoom(e.roomID, mutationSent{})
			}
		case emitCommand:
			if err := s.emit(e.cmd); err != nil {
				s.notifier.Notify(models.Notification{
					ID:      shared.GenerateID(),
					Level:   models.LevelError,
					Title:   "Could not reach the server",
					Message: fmt.Sprintf("%s was not sent: %v", e.cmd.Type, err),
				})
			}
		case mutationRejected:
			s.metrics.IncMutationsFailed(e.mutation.Kind.String())
			s.logger.Warn("mutation failed", "room", e.roomID, "mutation", e.mutation, "err", e.err)
			s.notifier.Notify(models.Notification{
				ID:      shared.GenerateID(),
				Level:   models.LevelError,
				RoomID:  e.roomID,
				Title:   mutationFailureTitle(e.mutation.Kind),
				Message: e.err.Error(),
			})
		case notify:
			s.notifier.Notify(e.n)
		case navigate:
			e.fn(s.nav)
		case startTimer:
			roomID, msg := e.roomID, e.msg
			s.timers.start(e.key, e.d, func() { s.deliver(roomID, msg) })
		case cancelTimer:
			s.timers.cancel(e.key)
		case fetchTracks:
			s.fetch(e)
		case draftReady:
			s.consumeDraft(e.draft)
		}
	}
}

// deliver hands a timer message back to its owner. An empty roomID addresses the wizard.
func (s *Supervisor) deliver(roomID string, msg any) {
	if roomID == "" {
		s.sendWizard(msg)
		return
	}
	s.sendRoom(roomID, msg)
}

func (s *Supervisor) emit(cmd transport.Command) error {
	if err := s.transport.Emit(cmd); err != nil {
		s.metrics.IncEmitErrors()
		s.logger.Error("failed to emit command", "type", cmd.Type, "err", err)
		return err
	}
	s.metrics.IncCommandsEmitted(string(cmd.Type))
	s.logger.Debug("command emitted", "type", cmd.Type)
	return nil
}

// fetch resolves wizard track metadata in the background.
func (s *Supervisor) fetch(e fetchTracks) {
	if s.tracks == nil {
		s.sendWizard(tracksFetched{gen: e.gen})
		return
	}
	ctx, svc := s.runCtx, s.tracks
	go func() {
		tracks, err := svc.FetchTracks(ctx, e.ids)
		s.post(func() { s.sendWizard(tracksFetched{gen: e.gen, tracks: tracks, err: err}) })
	}()
}

// consumeDraft emits the command for a finished wizard and closes it.
func (s *Supervisor) consumeDraft(d models.CreationDraft) {
	switch d.Variant {
	case models.VariantMtvExport:
		s.exec([]effect{emitCommand{cmd: transport.NewExportToMtv(d.SourceRoomID, d.ExportOptions())}})
	default:
		if err := s.emit(transport.NewCreateRoom(d.Params())); err != nil {
			s.notifier.Notify(models.Notification{
				ID:      shared.GenerateID(),
				Level:   models.LevelError,
				Title:   "Room creation failed",
				Message: err.Error(),
			})
		} else {
			s.pendingCreations = append(s.pendingCreations, d.Params().Name)
		}
	}
	s.logger.Info("creation confirmed", "variant", d.Variant, "name", d.Name)
	s.closeWizard()
}

func mutationFailureTitle(k models.MutationKind) string {
	switch k {
	case models.MutationAdd:
		return "Track could not be added"
	case models.MutationMove:
		return "Track could not be moved"
	case models.MutationDelete:
		return "Track could not be deleted"
	default:
		return "Edit failed"
	}
}

// publish snapshots the loop state for readers and tells the observer.
func (s *Supervisor) publish() {
	v := View{Rooms: make([]RoomSnapshot, 0, s.registry.len()), DisplayedRoom: s.displayed}
	for _, id := range s.registry.ids() {
		a, _ := s.registry.get(id)
		v.Rooms = append(v.Rooms, a.Snapshot())
	}
	if s.wizard != nil {
		w := s.wizard.Snapshot()
		v.Wizard = &w
	}
	if inv, ok := s.invitation.Current(); ok {
		v.Invitation = &inv
	}

	s.mu.Lock()
	s.view = v
	s.mu.Unlock()

	s.metrics.SetActiveRooms(len(v.Rooms))
	if s.observer != nil {
		s.observer.ViewChanged(v)
	}
}

// View returns the state captured after the last dispatch.
func (s *Supervisor) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Supervisor) Rooms() []RoomSnapshot { return s.View().Rooms }

func (s *Supervisor) Room(roomID string) (RoomSnapshot, bool) { return s.View().Room(roomID) }

func (s *Supervisor) Wizard() (WizardSnapshot, bool) {
	v := s.View()
	if v.Wizard == nil {
		return WizardSnapshot{}, false
	}
	return *v.Wizard, true
}

func (s *Supervisor) Invitation() (models.RoomSummary, bool) {
	v := s.View()
	if v.Invitation == nil {
		return models.RoomSummary{}, false
	}
	return *v.Invitation, true
}

func (s *Supervisor) DisplayedRoom() string { return s.View().DisplayedRoom }

// Metrics returns the instruments the supervisor records into.
func (s *Supervisor) Metrics() *metrics.Metrics { return s.metrics }

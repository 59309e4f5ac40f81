package actors

import (
	"strings"
	"time"

	"github.com/desertthunder/roomsync/internal/models"
	"github.com/desertthunder/roomsync/internal/shared"
)

// ConfirmationPhase tracks the confirmation step: fetch metadata, hold for the debounce, then allow confirming.
type ConfirmationPhase int

const (
	PhaseFetching ConfirmationPhase = iota
	PhaseDebouncing
	PhaseReady
)

func (p ConfirmationPhase) String() string {
	switch p {
	case PhaseDebouncing:
		return "debouncing"
	case PhaseReady:
		return "ready"
	default:
		return "fetching"
	}
}

// Messages understood by [CreationWizard.Send].
type (
	setRoomName       struct{ name string }
	setOpeningStatus  struct{ visibility models.Visibility }
	setInvitationOnly struct{ enabled bool }
	setPhysical       struct{ constraints *models.PhysicalConstraints }
	setTime           struct{ constraints *models.TimeConstraints }
	setMinimumVotes   struct{ votes int }
	nextStep          struct{}
	previousStep      struct{}
	confirmCreation   struct{}

	tracksFetched struct {
		gen    int
		tracks []models.Track
		err    error
	}

	confirmationElapsed struct{}
)

// CreationWizard collects room creation parameters one step at a time.
type CreationWizard struct {
	step     models.WizardStep
	draft    models.CreationDraft
	phase    ConfirmationPhase
	tracks   []models.Track
	fetchGen int
	debounce time.Duration
	consumed bool
}

func newCreationWizard(draft models.CreationDraft, debounce time.Duration) *CreationWizard {
	return &CreationWizard{step: models.StepRoomName, draft: draft, debounce: debounce}
}

// open returns the navigation for the first step.
func (w *CreationWizard) open() []effect {
	return []effect{w.navigateTo(models.StepRoomName)}
}

func (w *CreationWizard) Step() models.WizardStep { return w.step }

func (w *CreationWizard) Draft() models.CreationDraft { return w.draft }

// Send dispatches a message to the wizard and returns the effects it requests.
func (w *CreationWizard) Send(msg any) []effect {
	if w.step == models.StepConfirmed {
		return nil
	}

	switch m := msg.(type) {
	case setRoomName:
		if w.step == models.StepRoomName {
			w.draft.Name = m.name
		}
	case setOpeningStatus:
		if w.step != models.StepOpeningStatus {
			return nil
		}
		w.draft.Visibility = m.visibility
		if m.visibility == models.VisibilityPublic {
			w.draft.InvitationOnly = false
		}
	case setInvitationOnly:
		if w.step == models.StepOpeningStatus && w.draft.Visibility == models.VisibilityPublic {
			w.draft.InvitationOnly = m.enabled
		}
	case setPhysical:
		if w.draft.Variant == models.VariantMtvExport {
			w.draft.Physical = m.constraints
		}
	case setTime:
		if w.draft.Variant == models.VariantMtvExport {
			w.draft.Time = m.constraints
		}
	case setMinimumVotes:
		if w.draft.Variant == models.VariantMtvExport && m.votes >= 0 {
			w.draft.MinimumVotes = m.votes
		}
	case nextStep:
		return w.next()
	case previousStep:
		return w.previous()
	case confirmCreation:
		return w.confirm()
	case tracksFetched:
		return w.fetched(m)
	case confirmationElapsed:
		if w.step == models.StepConfirmation && w.phase == PhaseDebouncing {
			w.phase = PhaseReady
		}
	}
	return nil
}

func (w *CreationWizard) next() []effect {
	switch w.step {
	case models.StepRoomName:
		if strings.TrimSpace(w.draft.Name) == "" {
			return nil
		}
		w.step = models.StepOpeningStatus
		return []effect{w.navigateTo(w.step)}
	case models.StepOpeningStatus:
		return w.enterConfirmation()
	case models.StepConfirmation:
		return w.confirm()
	}
	return nil
}

func (w *CreationWizard) previous() []effect {
	switch w.step {
	case models.StepOpeningStatus:
		w.step = models.StepRoomName
		return []effect{w.navigateTo(w.step)}
	case models.StepConfirmation:
		w.step = models.StepOpeningStatus
		w.fetchGen++
		return []effect{cancelTimer{key: wizardTimerKey}, w.navigateTo(w.step)}
	}
	return nil
}

func (w *CreationWizard) enterConfirmation() []effect {
	if w.draft.Variant == models.VariantMtvExport {
		if err := w.draft.ValidateConstraints(); err != nil {
			return []effect{notify{n: models.Notification{
				ID:      shared.GenerateID(),
				Level:   models.LevelWarning,
				Title:   "Invalid constraints",
				Message: err.Error(),
			}}}
		}
	}

	w.step = models.StepConfirmation
	w.tracks = nil
	w.fetchGen++
	effects := []effect{w.navigateTo(w.step)}

	if len(w.draft.InitialTrackIDs) == 0 {
		return append(effects, w.startDebounce()...)
	}
	w.phase = PhaseFetching
	return append(effects, fetchTracks{ids: append([]string{}, w.draft.InitialTrackIDs...), gen: w.fetchGen})
}

// fetched stores the metadata and holds the confirmation screen for the debounce. A failed fetch is not fatal.
func (w *CreationWizard) fetched(m tracksFetched) []effect {
	if w.step != models.StepConfirmation || w.phase != PhaseFetching || m.gen != w.fetchGen {
		return nil
	}
	effects := w.startDebounce()
	if m.err != nil {
		return append(effects, notify{n: models.Notification{
			ID:      shared.GenerateID(),
			Level:   models.LevelWarning,
			Title:   "Track details unavailable",
			Message: m.err.Error(),
		}})
	}
	w.tracks = m.tracks
	return effects
}

func (w *CreationWizard) startDebounce() []effect {
	w.phase = PhaseDebouncing
	return []effect{startTimer{key: wizardTimerKey, d: w.debounce, msg: confirmationElapsed{}}}
}

// confirm finishes the wizard. The draft is released once.
func (w *CreationWizard) confirm() []effect {
	if w.step != models.StepConfirmation || w.phase != PhaseReady || w.consumed {
		return nil
	}
	w.step = models.StepConfirmed
	w.consumed = true
	return []effect{draftReady{draft: w.draft}}
}

func (w *CreationWizard) navigateTo(step models.WizardStep) effect {
	return navigate{fn: func(n Navigator) { n.OpenCreationStep(step) }}
}

// Snapshot returns an immutable copy of the wizard state.
func (w *CreationWizard) Snapshot() WizardSnapshot {
	d := w.draft
	d.InitialTrackIDs = append([]string{}, w.draft.InitialTrackIDs...)
	return WizardSnapshot{
		Step:       w.step,
		Draft:      d,
		Phase:      w.phase,
		Tracks:     append([]models.Track{}, w.tracks...),
		CanConfirm: w.step == models.StepConfirmation && w.phase == PhaseReady,
	}
}

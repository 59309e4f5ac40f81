package models

import (
	"fmt"
	"strings"
	"time"
)

// Visibility of a room being created.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
)

func (v Visibility) String() string {
	if v == VisibilityPrivate {
		return "private"
	}
	return "public"
}

// ParseVisibility parses "public" or "private".
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return VisibilityPublic, nil
	case "private":
		return VisibilityPrivate, nil
	default:
		return VisibilityPublic, fmt.Errorf("unknown visibility %q", s)
	}
}

// PhysicalConstraints restrict voting to users near a place.
type PhysicalConstraints struct {
	PlaceID string  `json:"physicalConstraintPlaceID"`
	Radius  float64 `json:"physicalConstraintRadius"`
}

// TimeConstraints restrict voting to a time window.
type TimeConstraints struct {
	StartsAt time.Time `json:"physicalConstraintStartsAt"`
	EndsAt   time.Time `json:"physicalConstraintEndsAt"`
}

// Validate reports whether the window is well formed.
func (c TimeConstraints) Validate() error {
	if c.StartsAt.IsZero() || c.EndsAt.IsZero() {
		return fmt.Errorf("time constraints require both bounds")
	}
	if !c.EndsAt.After(c.StartsAt) {
		return fmt.Errorf("time constraints must end after they start")
	}
	return nil
}

// PhysicalAndTimeConstraints is the wire shape combining both constraint kinds.
type PhysicalAndTimeConstraints struct {
	PhysicalConstraints
	TimeConstraints
}

// WizardVariant selects what the creation wizard produces when confirmed.
type WizardVariant int

const (
	// VariantRoom creates a new editable room.
	VariantRoom WizardVariant = iota
	// VariantMtvExport exports an existing room to the voting variant.
	VariantMtvExport
)

func (v WizardVariant) String() string {
	if v == VariantMtvExport {
		return "mtv-export"
	}
	return "room"
}

// CreationDraft accumulates wizard input. Constraints and MinimumVotes only apply to [VariantMtvExport].
type CreationDraft struct {
	Variant         WizardVariant
	SourceRoomID    string
	Name            string
	Visibility      Visibility
	InvitationOnly  bool
	InitialTrackIDs []string
	Physical        *PhysicalConstraints
	Time            *TimeConstraints
	MinimumVotes    int
}

// Params finalizes the draft into room creation parameters.
func (d CreationDraft) Params() CreationParams {
	return CreationParams{
		Name:                          strings.TrimSpace(d.Name),
		IsOpen:                        d.Visibility == VisibilityPublic,
		IsOpenOnlyInvitedUsersCanEdit: d.Visibility == VisibilityPublic && d.InvitationOnly,
		InitialTrackIDs:               append([]string{}, d.InitialTrackIDs...),
	}
}

// ValidateConstraints reports whether the export constraints can be sent. A place needs a time window and
// a time window needs a place.
func (d CreationDraft) ValidateConstraints() error {
	if (d.Physical == nil) != (d.Time == nil) {
		return fmt.Errorf("constraints require both a place and a time window")
	}
	if d.Time != nil {
		return d.Time.Validate()
	}
	return nil
}

// ExportOptions finalizes the draft into export options.
func (d CreationDraft) ExportOptions() MtvExportOptions {
	opts := MtvExportOptions{
		Name:                          strings.TrimSpace(d.Name),
		IsOpen:                        d.Visibility == VisibilityPublic,
		IsOpenOnlyInvitedUsersCanVote: d.Visibility == VisibilityPublic && d.InvitationOnly,
		MinimumScoreToBePlayed:        d.MinimumVotes,
	}
	if d.Physical != nil && d.Time != nil {
		opts.HasPhysicalAndTimeConstraints = true
		opts.PhysicalAndTimeConstraints = &PhysicalAndTimeConstraints{
			PhysicalConstraints: *d.Physical,
			TimeConstraints:     *d.Time,
		}
	}
	if opts.MinimumScoreToBePlayed < 1 {
		opts.MinimumScoreToBePlayed = 1
	}
	return opts
}

// CreationParams are the immutable parameters of a room creation command.
type CreationParams struct {
	Name                          string   `json:"name"`
	IsOpen                        bool     `json:"isOpen"`
	IsOpenOnlyInvitedUsersCanEdit bool     `json:"isOpenOnlyInvitedUsersCanEdit"`
	InitialTrackIDs               []string `json:"initialTracksIDs"`
}

// MtvExportOptions are the options of an export-to-MTV command.
type MtvExportOptions struct {
	Name                          string                      `json:"name,omitempty"`
	IsOpen                        bool                        `json:"isOpen"`
	IsOpenOnlyInvitedUsersCanVote bool                        `json:"isOpenOnlyInvitedUsersCanVote"`
	HasPhysicalAndTimeConstraints bool                        `json:"hasPhysicalAndTimeConstraints"`
	PhysicalAndTimeConstraints    *PhysicalAndTimeConstraints `json:"physicalAndTimeConstraints,omitempty"`
	MinimumScoreToBePlayed        int                         `json:"minimumScoreToBePlayed"`
}

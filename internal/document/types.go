// Package document provides the typed document model for metis workspaces.
//
// A document is a markdown file with YAML frontmatter. Five variants share a
// common core: Vision, Strategy, Initiative, Task, and ADR. Each variant owns
// a linear phase state machine encoded as a #phase/<name> tag.
package document

import (
	"strings"

	"github.com/randalmurphal/metis/internal/errors"
)

// Type identifies a document variant.
type Type string

const (
	TypeVision     Type = "vision"
	TypeStrategy   Type = "strategy"
	TypeInitiative Type = "initiative"
	TypeTask       Type = "task"
	TypeADR        Type = "adr"
)

// ValidTypes returns all valid document types in hierarchical order.
func ValidTypes() []Type {
	return []Type{TypeVision, TypeStrategy, TypeInitiative, TypeTask, TypeADR}
}

// IsValidType returns true if t is a valid document type.
func IsValidType(t Type) bool {
	switch t {
	case TypeVision, TypeStrategy, TypeInitiative, TypeTask, TypeADR:
		return true
	default:
		return false
	}
}

// ParseType converts a level string to a document type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidType(t) {
		return "", errors.ErrInvalidContent("unknown document level " + s)
	}
	return t, nil
}

// Letter returns the short-code type letter for the document type.
func (t Type) Letter() string {
	switch t {
	case TypeVision:
		return "V"
	case TypeStrategy:
		return "S"
	case TypeInitiative:
		return "I"
	case TypeTask:
		return "T"
	case TypeADR:
		return "A"
	default:
		return ""
	}
}

// TypeFromLetter converts a short-code type letter to a document type.
func TypeFromLetter(letter string) (Type, bool) {
	switch letter {
	case "V":
		return TypeVision, true
	case "S":
		return TypeStrategy, true
	case "I":
		return TypeInitiative, true
	case "T":
		return TypeTask, true
	case "A":
		return TypeADR, true
	default:
		return "", false
	}
}

// Phase represents a state in a document type's state machine.
type Phase string

const (
	// Vision phases
	PhaseDraft     Phase = "draft"
	PhaseReview    Phase = "review"
	PhasePublished Phase = "published"

	// Strategy and Initiative phases
	PhaseShaping   Phase = "shaping"
	PhaseDesign    Phase = "design"
	PhaseReady     Phase = "ready"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"

	// Initiative-only phases
	PhaseDiscovery Phase = "discovery"
	PhaseDecompose Phase = "decompose"

	// Task phases
	PhaseTodo    Phase = "todo"
	PhaseBlocked Phase = "blocked"

	// ADR phases
	PhaseDiscussion Phase = "discussion"
	PhaseDecided    Phase = "decided"
	PhaseSuperseded Phase = "superseded"
)

// phaseOrder holds the linear state machine for each document type.
// Side states (task blocked) are handled separately in CanTransition.
var phaseOrder = map[Type][]Phase{
	TypeVision:     {PhaseDraft, PhaseReview, PhasePublished},
	TypeStrategy:   {PhaseShaping, PhaseDesign, PhaseReady, PhaseActive, PhaseCompleted},
	TypeInitiative: {PhaseDiscovery, PhaseDesign, PhaseReady, PhaseDecompose, PhaseActive, PhaseCompleted},
	TypeTask:       {PhaseTodo, PhaseActive, PhaseCompleted},
	TypeADR:        {PhaseDraft, PhaseDiscussion, PhaseDecided, PhaseSuperseded},
}

// Phases returns the linear phase sequence for the document type.
func (t Type) Phases() []Phase {
	return phaseOrder[t]
}

// InitialPhase returns the first phase for the document type.
func (t Type) InitialPhase() Phase {
	phases := phaseOrder[t]
	if len(phases) == 0 {
		return ""
	}
	return phases[0]
}

// IsValidPhase returns true if p is a phase of the document type's machine.
func (t Type) IsValidPhase(p Phase) bool {
	for _, candidate := range phaseOrder[t] {
		if candidate == p {
			return true
		}
	}
	// Tasks may sit in the blocked side-state.
	return t == TypeTask && p == PhaseBlocked
}

// CanTransition returns true iff the move from one phase to the next is
// adjacent in the document type's state machine. Tasks additionally support
// the blocked side-state: reachable from todo or active, returning to active.
func (t Type) CanTransition(from, to Phase) bool {
	if t == TypeTask {
		if to == PhaseBlocked {
			return from == PhaseTodo || from == PhaseActive
		}
		if from == PhaseBlocked {
			return to == PhaseActive
		}
	}

	phases := phaseOrder[t]
	for i, p := range phases {
		if p == from {
			return i+1 < len(phases) && phases[i+1] == to
		}
	}
	return false
}

// RiskLevel classifies a strategy's risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ValidRiskLevels returns all valid risk level values.
func ValidRiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
}

// IsValidRiskLevel returns true if r is a valid risk level.
func IsValidRiskLevel(r RiskLevel) bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

// Complexity classifies an initiative's size.
type Complexity string

const (
	ComplexityS  Complexity = "S"
	ComplexityM  Complexity = "M"
	ComplexityL  Complexity = "L"
	ComplexityXL Complexity = "XL"
)

// ValidComplexities returns all valid complexity values.
func ValidComplexities() []Complexity {
	return []Complexity{ComplexityS, ComplexityM, ComplexityL, ComplexityXL}
}

// IsValidComplexity returns true if c is a valid complexity value.
func IsValidComplexity(c Complexity) bool {
	switch c {
	case ComplexityS, ComplexityM, ComplexityL, ComplexityXL:
		return true
	default:
		return false
	}
}

// phaseTagPrefix marks a structured phase tag.
const phaseTagPrefix = "#phase/"

// Tag is a document tag: either a free-form label or a structured
// #phase/<name> tag.
type Tag string

// IsPhase returns true if the tag is a structured phase tag.
func (t Tag) IsPhase() bool {
	return strings.HasPrefix(string(t), phaseTagPrefix)
}

// Phase returns the phase a structured tag encodes, or "" for plain labels.
func (t Tag) Phase() Phase {
	if !t.IsPhase() {
		return ""
	}
	return Phase(strings.TrimPrefix(string(t), phaseTagPrefix))
}

// PhaseTag builds the structured tag for a phase.
func PhaseTag(p Phase) Tag {
	return Tag(phaseTagPrefix + string(p))
}

// TypeTag builds the conventional type label tag (e.g. #task).
func TypeTag(t Type) Tag {
	return Tag("#" + string(t))
}

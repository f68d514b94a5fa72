// Package wizard drives the stepped onboarding lifecycle shared by church and
// event listings: per-step validation, partial payload merge, slug upkeep,
// step advancement and publishing. Both listing kinds run on the same engine,
// parameterized by a Definition.
package wizard

import "errors"

const (
	KindChurch = "church"
	KindEvent  = "event"
)

var (
	ErrUnknownStep     = errors.New("unknown wizard step")
	ErrNotFound        = errors.New("listing not found")
	ErrNotOwner        = errors.New("listing not owned by requester")
	ErrDuplicateChurch = errors.New("owner already has a church listing")
	ErrEventLimit      = errors.New("event limit reached for church")
	ErrNoChurch        = errors.New("owner has no church listing")
)

// FieldErrors maps a field name to the first violated rule's message.
type FieldErrors map[string]string

// Any reports whether at least one field failed validation.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// Definition describes the wizard shape of one listing kind.
type Definition struct {
	Kind      string
	FinalStep int
	// StepCap is the highest value Step may reach. The church wizard steps
	// one past its final step (a display sentinel); the event wizard stops
	// at its final step and publishes explicitly.
	StepCap int
}

var (
	ChurchDefinition = Definition{Kind: KindChurch, FinalStep: 4, StepCap: 5}
	EventDefinition  = Definition{Kind: KindEvent, FinalStep: 2, StepCap: 2}
)

// ValidStep reports whether n names a real wizard step.
func (d Definition) ValidStep(n int) bool {
	return n >= 1 && n <= d.FinalStep
}

// Advance returns the step after n, capped at the definition's StepCap.
func (d Definition) Advance(n int) int {
	if n+1 > d.StepCap {
		return d.StepCap
	}
	return n + 1
}

// GoBack returns the step before n, never below 1. Previously saved data is
// not re-validated on the way back.
func (d Definition) GoBack(n int) int {
	if n-1 < 1 {
		return 1
	}
	return n - 1
}

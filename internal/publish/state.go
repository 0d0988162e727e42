// SPDX-License-Identifier: MPL-2.0

package publish

import "fmt"

// Phase is the orchestrator's run state. Succeeded and Failed are terminal.
type Phase int

const (
	// PhaseIdle is the state before the first publish step.
	PhaseIdle Phase = iota
	// PhasePublishing means the step at Report.Index is in flight.
	PhasePublishing
	// PhaseSucceeded means every package in the plan was published.
	PhaseSucceeded
	// PhaseFailed means the step at Report.Index failed; later packages
	// were never attempted.
	PhaseFailed
)

// Status is the per-package publish state within one run. It exists only
// for the run's duration and is never persisted.
type Status int

const (
	// StatusPending means the package has not been attempted.
	StatusPending Status = iota
	// StatusPublished means the package was uploaded to the registry.
	// Publishing is irreversible; there is no rollback.
	StatusPublished
	// StatusFailed means the publish step for the package failed.
	StatusFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePublishing:
		return "publishing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPublished:
		return "published"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

type (
	// Report is the end state of one publish run: the terminal phase, the
	// index the run stopped at, and the per-package statuses in plan order.
	Report struct {
		// Phase is PhaseSucceeded or PhaseFailed.
		Phase Phase
		// Index is the last attempted step: the final index on success,
		// the failing index on failure.
		Index int
		// Statuses holds one Status per plan package, in plan order.
		Statuses []Status
	}
)

// StatusOf returns the status at plan position i.
func (r *Report) StatusOf(i int) Status {
	return r.Statuses[i]
}

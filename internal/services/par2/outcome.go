package par2

import "strings"

// Outcome is the closed set of verification results the pipeline accepts
// from the redundancy encoder.
type Outcome int

const (
	// OutcomeIntact means every protected block verified.
	OutcomeIntact Outcome = iota
	// OutcomeRepairable means damage was detected but the recovery set can
	// reconstruct the data.
	OutcomeRepairable
	// OutcomeFailed means verification failed outright.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIntact:
		return "intact"
	case OutcomeRepairable:
		return "repairable"
	default:
		return "failed"
	}
}

// classifyOutcome is the single translation point between par2cmdline's
// exit-code/output contract and the pipeline's outcome enum. par2cmdline
// exits 0 when all files verify, 1 when repair is possible, and >1 when it
// is not; the text check backstops builds whose exit codes drift.
func classifyOutcome(exitCode int, output string) Outcome {
	switch exitCode {
	case 0:
		return OutcomeIntact
	case 1:
		return OutcomeRepairable
	default:
		if containsRepairHint(output) {
			return OutcomeRepairable
		}
		return OutcomeFailed
	}
}

func containsRepairHint(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "repair is required") || strings.Contains(lower, "repair is possible")
}

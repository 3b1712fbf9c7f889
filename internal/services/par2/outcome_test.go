package par2

import "testing"

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		output   string
		want     Outcome
	}{
		{"clean verify", 0, "All files are correct, repair is not required.", OutcomeIntact},
		{"clean verify ignores output", 0, "Repair is required.", OutcomeIntact},
		{"repairable exit code", 1, "Repair is required.", OutcomeRepairable},
		{"repairable without text", 1, "", OutcomeRepairable},
		{"unrepairable damage", 2, "Repair is not possible.", OutcomeFailed},
		{"drifted exit code with repair text", 3, "Repair is required.", OutcomeRepairable},
		{"hard failure", 4, "Could not open file.", OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyOutcome(tt.exitCode, tt.output); got != tt.want {
				t.Errorf("classifyOutcome(%d, %q) = %v, want %v", tt.exitCode, tt.output, got, tt.want)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeIntact.String() != "intact" {
		t.Errorf("intact label = %q", OutcomeIntact.String())
	}
	if OutcomeRepairable.String() != "repairable" {
		t.Errorf("repairable label = %q", OutcomeRepairable.String())
	}
	if OutcomeFailed.String() != "failed" {
		t.Errorf("failed label = %q", OutcomeFailed.String())
	}
}

func TestCreateRejectsBadRecoveryPercent(t *testing.T) {
	cli := NewCLI()
	for _, pct := range []int{0, -1, 101} {
		if _, err := cli.Create(t.Context(), "/tmp/archive.tar.zst", pct); err == nil {
			t.Errorf("Create with recovery percent %d should fail", pct)
		}
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coldstore/internal/redundancy"
	"coldstore/internal/services/par2"
	"coldstore/internal/verify"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var verifyOnly bool

	cmd := &cobra.Command{
		Use:   "repair <artifact.tar.zst>",
		Short: "Reconstruct a damaged artifact from its PAR2 recovery set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			artifact := args[0]
			out := cmd.OutOrStdout()

			manager := redundancy.NewManager(ctx.par2Client(), cfg.Redundancy.RecoveryPercent, logger)
			outcome, _, verifyErr := manager.VerifySet(cmd.Context(), artifact)
			if verifyErr == nil && outcome == par2.OutcomeIntact {
				fmt.Fprintln(out, "Artifact already intact, nothing to repair")
				return nil
			}
			if verifyOnly {
				fmt.Fprintf(out, "Recovery set reports: %s\n", outcome)
				return verifyErr
			}
			if outcome == par2.OutcomeFailed {
				return verifyErr
			}

			if _, err := manager.Repair(cmd.Context(), artifact); err != nil {
				return err
			}
			fmt.Fprintln(out, "Repair completed, re-verifying")

			verifier := verify.NewVerifier(ctx.par2Client(), logger)
			report, err := verifier.Verify(cmd.Context(), artifact)
			renderVerifyReport(out, report)
			return err
		},
	}

	cmd.Flags().BoolVar(&verifyOnly, "verify-only", false, "Report the recovery set state without repairing")
	return cmd
}

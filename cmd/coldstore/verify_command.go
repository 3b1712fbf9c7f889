package main

import (
	"github.com/spf13/cobra"

	"coldstore/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <artifact.tar.zst>",
		Short: "Re-prove a sealed artifact through every verification layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			verifier := verify.NewVerifier(ctx.par2Client(), logger)
			report, verifyErr := verifier.Verify(cmd.Context(), args[0])
			renderVerifyReport(cmd.OutOrStdout(), report)
			return verifyErr
		},
	}
}

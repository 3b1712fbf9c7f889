package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"coldstore/internal/restore"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var force bool
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "extract <artifact.tar.zst>",
		Short: "Restore a sealed artifact into a directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := ctx.ensure()
			if err != nil {
				return err
			}

			artifact := args[0]
			dest := strings.TrimSpace(outputDir)
			if dest == "" {
				dest = strings.TrimSuffix(strings.TrimSuffix(artifact, ".zst"), ".tar")
			}

			restorer := restore.NewRestorer(logger)
			summary, err := restorer.Restore(cmd.Context(), artifact, dest, restore.Options{
				Check: !skipCheck,
				Force: force,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d files (%s) to %s in %s\n",
				summary.Files, formatBytes(summary.Bytes), dest, formatDuration(summary.Elapsed))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Destination directory for the extracted tree")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Extract into a non-empty destination")
	cmd.Flags().BoolVar(&skipCheck, "no-check", false, "Skip the artifact self-check before extraction")
	return cmd
}

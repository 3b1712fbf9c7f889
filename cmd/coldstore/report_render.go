package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/text"

	"coldstore/internal/batch"
	"coldstore/internal/pipeline"
	"coldstore/internal/verify"
)

func renderRunReport(out io.Writer, report *pipeline.RunReport) {
	if report == nil {
		return
	}

	rows := make([][]string, 0, len(report.Stages))
	for _, timing := range report.Stages {
		rows = append(rows, []string{
			string(timing.Stage),
			statusWord(timing.Passed),
			formatDuration(timing.Duration),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{{title: "Stage"}, {title: "Status"}, {title: "Elapsed", right: true}},
		rows,
	))

	if report.Sealed() {
		fmt.Fprintf(out, "Sealed %s (%s -> %s, %s, %d members, %s)\n",
			report.ArtifactPath,
			formatBytes(report.SourceSize),
			formatBytes(report.ArtifactSize),
			formatRatio(report.SourceSize, report.ArtifactSize),
			report.Members,
			formatDuration(report.Elapsed),
		)
		return
	}

	failure := report.Failure
	fmt.Fprintf(out, "%s at stage %s: %s\n", colorize("Failed", text.FgRed), failure.Stage, failure.Kind)
	fmt.Fprintf(out, "  %s\n", failure.Message)
	if failure.FreeDiskBytes > 0 || failure.AvailableMemoryBytes > 0 {
		fmt.Fprintf(out, "  environment: %s disk free, %s memory available\n",
			formatBytes(int64(failure.FreeDiskBytes)),
			formatBytes(int64(failure.AvailableMemoryBytes)),
		)
	}
}

func renderBatchReport(out io.Writer, report *batch.Report) {
	if report == nil {
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		detail := ""
		size := "-"
		if result.Report != nil {
			if result.Report.Failure != nil {
				detail = string(result.Report.Failure.Stage) + ": " + result.Report.Failure.Kind
			} else {
				size = formatBytes(result.Report.ArtifactSize)
			}
		} else if result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(result.Archive),
			statusWord(result.Err == nil),
			size,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{{title: "Archive"}, {title: "Status"}, {title: "Artifact", right: true}, {title: "Detail"}},
		rows,
	))

	fmt.Fprintf(out, "%d sealed, %d failed, %d skipped of %d archives in %s\n",
		report.Sealed, report.Failed, len(report.Skipped), report.Total+len(report.Skipped),
		formatDuration(report.Elapsed),
	)
	for _, skip := range report.Skipped {
		fmt.Fprintf(out, "  skipped %s: %s\n", filepath.Base(skip.Path), skip.Reason)
	}
}

func renderVerifyReport(out io.Writer, report *verify.Report) {
	if report == nil {
		return
	}

	rows := make([][]string, 0, len(report.Layers))
	for _, layer := range report.Layers {
		status := statusWord(layer.Status != verify.StatusFailed)
		if layer.Status == verify.StatusSkipped {
			status = colorize("skipped", text.FgYellow)
		}
		rows = append(rows, []string{layer.Name, status, layer.Detail})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{{title: "Layer"}, {title: "Status"}, {title: "Detail"}},
		rows,
	))

	verdict := colorize("verified", text.FgGreen)
	if !report.Passed() {
		verdict = colorize("FAILED", text.FgRed)
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", report.Artifact, verdict, formatDuration(report.Elapsed))
}

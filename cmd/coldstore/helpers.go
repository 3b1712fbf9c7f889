package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// stdoutIsTerminal gates color output so piped reports stay plain.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(value string, color text.Color) string {
	if !stdoutIsTerminal() {
		return value
	}
	return color.Sprint(value)
}

func statusWord(ok bool) string {
	if ok {
		return colorize("ok", text.FgGreen)
	}
	return colorize("FAILED", text.FgRed)
}

func formatBytes(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

func formatRatio(sourceSize, artifactSize int64) string {
	if sourceSize <= 0 || artifactSize <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", float64(sourceSize)/float64(artifactSize))
}

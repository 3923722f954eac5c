// Package formatter renders the outcome of a reduction session for the
// terminal.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	headerStyle = color.New(color.FgCyan, color.Bold)
	labelStyle  = color.New(color.FgBlue, color.Bold)
	valueStyle  = color.New(color.FgWhite)
	goodStyle   = color.New(color.FgGreen, color.Bold)
	warnStyle   = color.New(color.FgYellow, color.Bold)
)

// Report is the printable summary of one finished reduction.
type Report struct {
	Input      string
	Output     string
	OrigBytes  int
	FinalBytes int
	OrigNodes  int
	FinalNodes int
	Passes     int
	Commits    int
	Tests      int
	CacheHits  int
	Skipped    int
	Duration   time.Duration
}

// Format renders the report with aligned, colorized rows.
func Format(r Report) string {
	var b strings.Builder

	b.WriteString(headerStyle.Sprintf("reduced %s\n", r.Input))
	writeRow(&b, "output", valueStyle.Sprint(r.Output))
	writeRow(&b, "size", sizeLine(r.OrigBytes, r.FinalBytes, "bytes"))
	writeRow(&b, "tree", sizeLine(r.OrigNodes, r.FinalNodes, "nodes"))
	writeRow(&b, "search", valueStyle.Sprintf("%d passes, %d commits", r.Passes, r.Commits))
	writeRow(&b, "tests", valueStyle.Sprintf("%d run, %d cached, %d skipped", r.Tests, r.CacheHits, r.Skipped))
	writeRow(&b, "time", valueStyle.Sprint(r.Duration.Round(time.Millisecond).String()))

	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Sprintf("  %-8s", label))
	b.WriteString(value)
	b.WriteByte('\n')
}

func sizeLine(orig, final int, unit string) string {
	line := fmt.Sprintf("%d -> %d %s", orig, final, unit)
	if orig <= 0 {
		return valueStyle.Sprint(line)
	}
	ratio := 100 * float64(orig-final) / float64(orig)
	pct := fmt.Sprintf(" (-%.1f%%)", ratio)
	if final < orig {
		return valueStyle.Sprint(line) + goodStyle.Sprint(pct)
	}
	return valueStyle.Sprint(line) + warnStyle.Sprint(" (no reduction)")
}

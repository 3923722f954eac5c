package formatter

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	color.NoColor = true

	out := Format(Report{
		Input:      "crash.go",
		Output:     "reduced/crash.go",
		OrigBytes:  1000,
		FinalBytes: 100,
		OrigNodes:  80,
		FinalNodes: 12,
		Passes:     2,
		Commits:    7,
		Tests:      42,
		CacheHits:  5,
		Skipped:    3,
		Duration:   1234 * time.Millisecond,
	})

	assert.Contains(t, out, "reduced crash.go")
	assert.Contains(t, out, "reduced/crash.go")
	assert.Contains(t, out, "1000 -> 100 bytes")
	assert.Contains(t, out, "(-90.0%)")
	assert.Contains(t, out, "80 -> 12 nodes")
	assert.Contains(t, out, "2 passes, 7 commits")
	assert.Contains(t, out, "42 run, 5 cached, 3 skipped")
	assert.Contains(t, out, "1.234s")
}

func TestFormatNoReduction(t *testing.T) {
	color.NoColor = true

	out := Format(Report{OrigBytes: 10, FinalBytes: 10})
	assert.Contains(t, out, "no reduction")
}

package tester

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Subprocess runs a user command against a materialized candidate file.
// Exit status 0 marks the candidate interesting, any other exit status not
// interesting. Failures to start the command at all are fatal.
type Subprocess struct {
	// Command is the argv of the interestingness test. The path of the
	// materialized candidate file is appended as the last argument and also
	// exported as TREDUCE_TEST in the environment.
	Command []string

	// WorkDir is the root under which candidate files are materialized,
	// one directory per candidate ID.
	WorkDir string

	// TestName is the file name of each materialized candidate, usually the
	// base name of the original input so the test command sees a familiar
	// extension.
	TestName string

	// Timeout bounds one invocation. A candidate that exceeds it counts as
	// not interesting; slow candidates are treated like failing ones rather
	// than aborting the run. Zero means no bound.
	Timeout time.Duration

	Logger *zap.Logger
}

// Test implements Tester.
func (s *Subprocess) Test(ctx context.Context, cand Candidate) (Verdict, error) {
	if len(s.Command) == 0 {
		return NotInteresting, errors.New("tester: no test command configured")
	}

	dir := filepath.Join(s.WorkDir, filepath.FromSlash(cand.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NotInteresting, fmt.Errorf("tester: creating candidate dir: %w", err)
	}
	testFile := filepath.Join(dir, s.TestName)
	if err := os.WriteFile(testFile, []byte(cand.Text), 0o644); err != nil {
		return NotInteresting, fmt.Errorf("tester: writing candidate file: %w", err)
	}

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, s.Command[1:]...), testFile)
	cmd := exec.CommandContext(runCtx, s.Command[0], args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TREDUCE_TEST="+testFile)

	err := cmd.Run()
	switch {
	case err == nil:
		return Interesting, nil
	case runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		if s.Logger != nil {
			s.Logger.Warn("test command timed out", zap.String("candidate", cand.ID))
		}
		return NotInteresting, nil
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NotInteresting, nil
		}
		return NotInteresting, fmt.Errorf("tester: running %q: %w", s.Command[0], err)
	}
}

// Package tester defines the interestingness oracle consumed by the
// reduction engine and a subprocess-backed implementation of it.
package tester

import "context"

// Verdict is the oracle's judgement of a candidate.
type Verdict int8

const (
	// NotInteresting means the candidate no longer reproduces the property
	// under investigation.
	NotInteresting Verdict = iota
	// Interesting means the candidate still reproduces it.
	Interesting
)

func (v Verdict) String() string {
	if v == Interesting {
		return "interesting"
	}
	return "not interesting"
}

// Candidate is one unparsed reduction candidate. ID is a slash-separated,
// filesystem-safe path fragment unique within the run; testers that
// materialize candidates on disk scope their files by it, so concurrently
// tested candidates never collide.
type Candidate struct {
	ID   string
	Text string
}

// Tester decides whether a candidate is interesting. Any returned error is
// fatal to the whole reduction; it is never interpreted as a verdict.
type Tester interface {
	Test(ctx context.Context, cand Candidate) (Verdict, error)
}

// Func adapts a plain function to the Tester interface.
type Func func(ctx context.Context, cand Candidate) (Verdict, error)

// Test implements Tester.
func (f Func) Test(ctx context.Context, cand Candidate) (Verdict, error) {
	return f(ctx, cand)
}

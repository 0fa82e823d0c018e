package sanitize

import (
	"fmt"

	"thinkclear-backend/internal/contract"
)

// Stage of the per-request state machine:
// received → normalized → enforced → {valid, fallback}.
type Stage string

const (
	StageReceived   Stage = "received"
	StageNormalized Stage = "normalized"
	StageEnforced   Stage = "enforced"
	StageValidated  Stage = "validated"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeValid    Outcome = "valid"
	OutcomeFallback Outcome = "fallback"
)

// Result of one run. Response is always contract-compliant; Err only explains
// a fallback and is meant for logs.
type Result struct {
	Response Response
	Outcome  Outcome
	// Stage is the last stage completed before the terminal decision.
	Stage Stage
	Err   error
}

// Sanitizer coerces untrusted model replies into StructuredResponses.
// It holds only the immutable contract table and is safe for concurrent use.
type Sanitizer struct {
	table *contract.Table
}

func New(table *contract.Table) *Sanitizer {
	if table == nil {
		table = contract.Default()
	}
	return &Sanitizer{table: table}
}

func (s *Sanitizer) Contract(m contract.Mode) contract.Contract {
	return s.table.Get(m)
}

// Fallback is the fallback marker for m.
func (s *Sanitizer) Fallback(m contract.Mode) Response {
	return Fallback(s.table.Get(m))
}

// Sanitize runs raw through the pipeline exactly once. It never fails:
// every problem ends in the fallback marker.
func (s *Sanitizer) Sanitize(m contract.Mode, raw Raw) (res Result) {
	c := s.table.Get(m)
	stage := StageReceived

	defer func() {
		if p := recover(); p != nil {
			res = Result{
				Response: Fallback(c),
				Outcome:  OutcomeFallback,
				Stage:    stage,
				Err:      newError(KindInternal, stage, fmt.Sprintf("panic: %v", p)),
			}
		}
	}()

	fail := func(err error) Result {
		return Result{Response: Fallback(c), Outcome: OutcomeFallback, Stage: stage, Err: err}
	}

	parsed, err := Parse(raw)
	if err != nil {
		return fail(err)
	}
	candidate, err := Normalize(c, parsed)
	if err != nil {
		return fail(err)
	}
	stage = StageNormalized

	candidate = Enforce(c, candidate)
	stage = StageEnforced

	out, err := Validate(c, candidate)
	if err != nil {
		return fail(err)
	}
	return Result{Response: out, Outcome: OutcomeValid, Stage: StageValidated}
}

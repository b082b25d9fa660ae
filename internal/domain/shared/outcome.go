package shared

// Outcome tells callers whether an operation produced its ideal answer
// or fell back to a best-effort one.
type Outcome string

const (
	OutcomeIdeal    Outcome = "ideal"
	OutcomeDegraded Outcome = "degraded"
	OutcomeFailed   Outcome = "failed"
)

// String returns the outcome name
func (o Outcome) String() string {
	return string(o)
}

// IsDegraded reports whether a fallback path produced the result
func (o Outcome) IsDegraded() bool {
	return o == OutcomeDegraded
}

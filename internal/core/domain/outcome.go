package domain

// Outcome reports what a mutation did.
type Outcome string

const (
	OutcomeChanged  Outcome = "changed"
	OutcomeNoChange Outcome = "no_change"
	OutcomeNotFound Outcome = "not_found"
)

// NoChangeMessage is reported when a mutation leaves the ticket as it was.
const NoChangeMessage = "No change."

package domain

import "strings"

// Classify decides the routing of a ticket. The named handler is chosen only
// when the hint names them and the confidence reaches ConfidenceThreshold;
// every other case goes to staff.
func Classify(hint string, confidence float64) Routing {
	if strings.TrimSpace(hint) == string(RoutingHandler) && confidence >= ConfidenceThreshold {
		return RoutingHandler
	}
	return RoutingStaff
}

// Reclassify re-runs Classify using the ticket's current routing as the hint.
func (t *Ticket) Reclassify() {
	t.Routing = Classify(string(t.Routing), t.Confidence)
}

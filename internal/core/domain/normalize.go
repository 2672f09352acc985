package domain

import (
	"strings"
)

// Normalize converts a feed record into a canonical ticket. It never fails;
// missing or malformed fields fall back to the entries of Defaults.
func Normalize(raw RawTicket) *Ticket {
	t := &Ticket{
		ID:         TicketID(scalarText(raw.ID)),
		Subject:    scalarText(raw.Subject),
		Body:       scalarText(raw.Body),
		Sender:     scalarText(raw.Sender),
		Axis:       scalarText(raw.Sport),
		Date:       scalarText(raw.Date),
		Status:     Defaults.Status,
		Confidence: confidenceValue(raw.Confidence),
		Note:       Defaults.Note,
	}

	if note, ok := stringValue(raw.Note); ok {
		t.Note = note
	}
	if status, ok := stringValue(raw.Status); ok && status != "" {
		t.Status = TicketStatus(status)
	}

	t.SetCategories(rawCategories(raw))

	// Routing is always recomputed, the raw assignee is only a hint.
	t.Routing = Classify(scalarText(raw.Assignee), t.Confidence)
	return t
}

func rawCategories(raw RawTicket) []string {
	if elems, ok := arrayElements(raw.Types); ok {
		parts := make([]string, 0, len(elems))
		for _, e := range elems {
			parts = append(parts, scalarText(e))
		}
		return CleanCategories(parts, true)
	}
	legacy, _ := stringValue(raw.Type)
	return SplitLegacyType(legacy)
}

// SplitLegacyType derives categories from a single "type" string such as
// "Størrelse + Levering" or "Størrelse, Levering".
func SplitLegacyType(legacy string) []string {
	fields := strings.FieldsFunc(legacy, func(r rune) bool {
		return r == ',' || r == ';' || r == '+'
	})
	parts := CleanCategories(fields, true)
	if len(parts) == 0 {
		if trimmed := strings.TrimSpace(legacy); trimmed != "" {
			return []string{trimmed}
		}
	}
	return parts
}

// CleanCategories drops empty entries and duplicates while keeping the first
// occurrence order. The result is never nil.
func CleanCategories(categories []string, trim bool) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if trim {
			c = strings.TrimSpace(c)
		}
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

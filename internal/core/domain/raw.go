package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawTicket is a feed record as received. Every field is kept as raw JSON so
// that the normalizer alone decides how loosely typed values are read.
type RawTicket struct {
	ID         json.RawMessage `json:"id,omitempty"`
	Subject    json.RawMessage `json:"subject,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Sender     json.RawMessage `json:"sender,omitempty"`
	Sport      json.RawMessage `json:"sport,omitempty"`
	Date       json.RawMessage `json:"date,omitempty"`
	Type       json.RawMessage `json:"type,omitempty"`
	Types      json.RawMessage `json:"types,omitempty"`
	Assignee   json.RawMessage `json:"assignee,omitempty"`
	Status     json.RawMessage `json:"status,omitempty"`
	Confidence json.RawMessage `json:"confidence,omitempty"`
	Note       json.RawMessage `json:"note,omitempty"`
}

// Raw converts a normalized ticket back into its feed form.
func (t *Ticket) Raw() RawTicket {
	types, _ := json.Marshal(t.Categories)
	return RawTicket{
		ID:         jsonString(string(t.ID)),
		Subject:    jsonString(t.Subject),
		Body:       jsonString(t.Body),
		Sender:     jsonString(t.Sender),
		Sport:      jsonString(t.Axis),
		Date:       jsonString(t.Date),
		Type:       jsonString(t.DisplayCategory),
		Types:      types,
		Assignee:   jsonString(string(t.Routing)),
		Status:     jsonString(string(t.Status)),
		Confidence: json.RawMessage(strconv.FormatFloat(t.Confidence, 'f', -1, 64)),
		Note:       jsonString(t.Note),
	}
}

func jsonString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// rawKind classifies the first significant byte of a JSON value.
func rawKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// stringValue returns the value only when raw is a JSON string.
func stringValue(raw json.RawMessage) (string, bool) {
	if rawKind(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// scalarText stringifies JSON strings, numbers and booleans. Null, absent,
// objects and arrays yield "".
func scalarText(raw json.RawMessage) string {
	switch k := rawKind(raw); {
	case k == '"':
		s, _ := stringValue(raw)
		return s
	case k == 't' || k == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ""
		}
		return strconv.FormatBool(b)
	case k == '-' || (k >= '0' && k <= '9'):
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return ""
	}
}

// confidenceValue reads a JSON number or numeric string, clamped to [0,1].
func confidenceValue(raw json.RawMessage) float64 {
	var f float64
	switch k := rawKind(raw); {
	case k == '"':
		s, _ := stringValue(raw)
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Defaults.Confidence
		}
		f = parsed
	case k == '-' || (k >= '0' && k <= '9'):
		if err := json.Unmarshal(raw, &f); err != nil {
			return Defaults.Confidence
		}
	default:
		return Defaults.Confidence
	}
	if math.IsNaN(f) {
		return Defaults.Confidence
	}
	return math.Min(1, math.Max(0, f))
}

// arrayElements returns the elements of a JSON array, or false when raw is not one.
func arrayElements(raw json.RawMessage) ([]json.RawMessage, bool) {
	if rawKind(raw) != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

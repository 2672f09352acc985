package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// OverrideRecord is the persisted divergence of one ticket from its baseline.
// JSON keys follow the stored format already in use by the dashboard.
type OverrideRecord struct {
	Routing    Routing      `json:"assignee"`
	Status     TicketStatus `json:"status"`
	Note       string       `json:"note"`
	Thread     []Message    `json:"replies"`
	Categories []string     `json:"types"`
}

// OverrideMap holds the stored overrides by ticket id.
type OverrideMap map[TicketID]OverrideRecord

// Get returns the override of a ticket and whether one exists.
func (m OverrideMap) Get(id TicketID) (OverrideRecord, bool) {
	rec, ok := m[id]
	return rec, ok
}

// IDs returns the ids in the map in ascending order.
func (m OverrideMap) IDs() []TicketID {
	ids := make([]TicketID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// storedOverride is the lenient decoding shape of one stored entry.
type storedOverride struct {
	Assignee json.RawMessage   `json:"assignee"`
	Status   json.RawMessage   `json:"status"`
	Note     json.RawMessage   `json:"note"`
	Replies  []json.RawMessage `json:"replies"`
	Types    json.RawMessage   `json:"types"`
}

// NewOverrideRecord captures the live state of a ticket and its thread.
func NewOverrideRecord(t *Ticket, thread []Message) OverrideRecord {
	return OverrideRecord{
		Routing:    t.Routing,
		Status:     t.Status,
		Note:       t.Note,
		Thread:     append(make([]Message, 0, len(thread)), thread...),
		Categories: append(make([]string, 0, len(t.Categories)), t.Categories...),
	}
}

// DecodeOverrides parses a stored override map. A value that is not a JSON
// object yields an error and no entries. Entries that are null are skipped;
// entries that cannot be read are skipped and reported in skipped.
func DecodeOverrides(data []byte) (m OverrideMap, skipped []TicketID, err error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return OverrideMap{}, nil, fmt.Errorf("decode override map: %w", err)
	}
	if entries == nil {
		return OverrideMap{}, nil, fmt.Errorf("decode override map: value is not an object")
	}

	m = make(OverrideMap, len(entries))
	for key, raw := range entries {
		id := TicketID(key)
		switch rawKind(raw) {
		case 'n':
			continue
		case '{':
		default:
			skipped = append(skipped, id)
			continue
		}

		var stored storedOverride
		if err := json.Unmarshal(raw, &stored); err != nil {
			skipped = append(skipped, id)
			continue
		}
		m[id] = stored.record()
	}
	return m, skipped, nil
}

func (s storedOverride) record() OverrideRecord {
	rec := OverrideRecord{}
	if v, ok := stringValue(s.Assignee); ok {
		rec.Routing = Routing(v)
	}
	if v, ok := stringValue(s.Status); ok {
		rec.Status = TicketStatus(v)
	}
	if v, ok := stringValue(s.Note); ok {
		rec.Note = v
	}
	if s.Replies != nil {
		rec.Thread = make([]Message, 0, len(s.Replies))
		for _, raw := range s.Replies {
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			rec.Thread = append(rec.Thread, msg)
		}
	}
	if elems, ok := arrayElements(s.Types); ok {
		parts := make([]string, 0, len(elems))
		for _, e := range elems {
			parts = append(parts, scalarText(e))
		}
		rec.Categories = CleanCategories(parts, false)
	}
	return rec
}

// EncodeOverrides serializes the whole map.
func EncodeOverrides(m OverrideMap) ([]byte, error) {
	out := make(map[TicketID]OverrideRecord, len(m))
	for id, rec := range m {
		if rec.Thread == nil {
			rec.Thread = []Message{}
		}
		if rec.Categories == nil {
			rec.Categories = []string{}
		}
		out[id] = rec
	}
	return json.Marshal(out)
}

// ApplyOverride layers a stored record onto the ticket. Routing and status are
// taken when set, the note always, categories when present. Routing is then
// classified again with the stored value as the hint.
func (t *Ticket) ApplyOverride(rec OverrideRecord) {
	if rec.Routing != "" {
		t.Routing = rec.Routing
	}
	if rec.Status != "" {
		t.Status = rec.Status
	}
	t.Note = rec.Note
	if rec.Categories != nil {
		t.SetCategories(rec.Categories)
	}
	t.Reclassify()
}

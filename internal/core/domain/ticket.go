package domain

import (
	"strings"
)

// TicketID identifies a ticket. IDs come from the feed and are compared as strings.
type TicketID string

func (id TicketID) String() string { return string(id) }

// Routing is the handling target of a ticket: the staff pool or the named handler.
type Routing string

const (
	RoutingStaff   Routing = "Medarbejder"
	RoutingHandler Routing = "Peter"
)

// ConfidenceThreshold is the minimum classifier confidence required before a
// ticket may be routed to the named handler.
const ConfidenceThreshold = 0.8

// Routings lists the valid routing values in display order.
func Routings() []Routing {
	return []Routing{RoutingStaff, RoutingHandler}
}

// IsValid reports whether r is one of the two routing values.
func (r Routing) IsValid() bool {
	return r == RoutingStaff || r == RoutingHandler
}

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Åben"
	StatusInProgress TicketStatus = "I gang"
	StatusClosed     TicketStatus = "Lukket"
)

// Statuses lists the valid status values in display order.
func Statuses() []TicketStatus {
	return []TicketStatus{StatusOpen, StatusInProgress, StatusClosed}
}

func (s TicketStatus) IsValid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// IsSolved reports whether the status counts as solved on the dashboard.
func (s TicketStatus) IsSolved() bool {
	return s == StatusClosed
}

// Direction tells whether a thread message came from the customer or was sent by us.
type Direction string

const (
	DirectionInbound  Direction = "in"
	DirectionOutbound Direction = "out"
)

// Message is one entry of a ticket's conversation thread.
type Message struct {
	From      string    `json:"from"`
	Date      string    `json:"date"`
	Body      string    `json:"body"`
	Direction Direction `json:"direction"`
}

// Ticket is the canonical, normalized form of a feed record.
type Ticket struct {
	ID              TicketID
	Subject         string
	Body            string
	Sender          string
	Axis            string // category axis, e.g. the sport
	Date            string // YYYY-MM-DD, compared as text
	Categories      []string
	DisplayCategory string
	Routing         Routing
	Status          TicketStatus
	Confidence      float64
	Note            string
}

// Month returns the YYYY-MM key of the ticket date.
func (t *Ticket) Month() string {
	return MonthKey(t.Date)
}

// MonthKey returns the first seven characters of a date string.
func MonthKey(date string) string {
	r := []rune(date)
	if len(r) < 7 {
		return date
	}
	return string(r[:7])
}

// SetCategories replaces the category list and recomputes the display category.
func (t *Ticket) SetCategories(categories []string) {
	t.Categories = append(make([]string, 0, len(categories)), categories...)
	t.DisplayCategory = JoinCategories(t.Categories)
}

// HasCategory reports whether the ticket carries the given category.
func (t *Ticket) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	c := *t
	c.Categories = append(make([]string, 0, len(t.Categories)), t.Categories...)
	return &c
}

// SeedMessage synthesizes the inbound message that opened the ticket. It is
// never stored in the thread.
func (t *Ticket) SeedMessage() Message {
	from := t.Sender
	if from == "" {
		from = Defaults.SeedSender
	}
	date := t.Date
	if date == "" {
		date = Defaults.SeedDate
	}
	return Message{
		From:      from,
		Date:      date,
		Body:      t.Body,
		Direction: DirectionInbound,
	}
}

// AppendNote adds a time-stamped line to the ticket note.
func (t *Ticket) AppendNote(stamp, message string) {
	line := stamp + " • " + message
	prev := strings.TrimSpace(t.Note)
	if prev == "" {
		t.Note = line
		return
	}
	t.Note = prev + "\n" + line
}

// JoinCategories renders categories the way they are displayed.
func JoinCategories(categories []string) string {
	return strings.Join(categories, " + ")
}

// CategoriesEqual compares two category lists pairwise and in order.
func CategoriesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

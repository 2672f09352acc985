package services

import (
	"github.com/lorrc/triage-desk/internal/core/domain"
)

// ThreadLedger keeps the stored conversation of every ticket. Threads are
// append-only; only override application replaces one wholesale.
type ThreadLedger struct {
	threads map[domain.TicketID][]domain.Message
}

func NewThreadLedger() *ThreadLedger {
	return &ThreadLedger{threads: make(map[domain.TicketID][]domain.Message)}
}

// Append adds a message to the end of the ticket's thread.
func (l *ThreadLedger) Append(id domain.TicketID, msg domain.Message) {
	l.threads[id] = append(l.Get(id), msg)
}

// Get returns the thread of a ticket, creating an empty one on first access.
func (l *ThreadLedger) Get(id domain.TicketID) []domain.Message {
	thread, ok := l.threads[id]
	if !ok {
		thread = []domain.Message{}
		l.threads[id] = thread
	}
	return thread
}

// Install replaces the thread of a ticket.
func (l *ThreadLedger) Install(id domain.TicketID, msgs []domain.Message) {
	l.threads[id] = append(make([]domain.Message, 0, len(msgs)), msgs...)
}

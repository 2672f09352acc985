package domain

// Count is one bar of a histogram.
type Count struct {
	Label string
	Count int
}

// Dashboard summarizes the full ticket collection, regardless of filters.
type Dashboard struct {
	Total         int
	Solved        int
	Open          int
	SolvedPercent int
	OpenPercent   int
	ByCategory    []Count
	ByRouting     []Count
	ByMonth       []Count // ascending by month key
}

// Section is one group of the list view.
type Section struct {
	Axis    string
	Known   bool // false for ad-hoc sections of unrecognized axis values
	Tickets []*Ticket
}

// TicketList is the filtered, sorted and grouped list view.
type TicketList struct {
	Sections []Section
	Count    int
}

package domain

// DefaultsTable names every fallback value the engine substitutes for missing
// or unusable input.
type DefaultsTable struct {
	Routing          Routing
	Status           TicketStatus
	Confidence       float64
	Note             string
	Wildcard         string
	SortKey          SortKey
	FallbackCategory string
	Axes             []string
	CategoryOptions  []string
	StorageKey       string
	ReplySender      string
	SeedSender       string
	SeedDate         string
}

// Defaults is the single table of fallbacks.
var Defaults = DefaultsTable{
	Routing:          RoutingStaff,
	Status:           StatusOpen,
	Confidence:       0,
	Note:             "",
	Wildcard:         "all",
	SortKey:          SortDateDesc,
	FallbackCategory: "Andet",
	Axes:             []string{"Rugby", "Hockey", "Cricket"},
	CategoryOptions:  []string{"Størrelse", "Levering", "Anbefaling", "Reklamation", "Klubindkøb", "Andet"},
	StorageKey:       "uk_tickets_overrides_v1",
	ReplySender:      "UK Sports (Admin)",
	SeedSender:       "Customer",
	SeedDate:         "-",
}

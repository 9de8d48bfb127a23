package seed

// Fixture is one pre-defined memory to load into an empty store.
type Fixture struct {
	ID      string
	Content string
}

// DefaultFixtures returns the pre-defined memories used to populate a
// fresh knowledge base for demos and simulation runs.
func DefaultFixtures() []Fixture {
	return []Fixture{
		{
			ID:      "test-memory-1",
			Content: "I had a wonderful sunset dinner at Cafe Luna with my college friend Sarah last Tuesday. We talked about her new job in marketing and reminisced about our study abroad trip to Italy.",
		},
		{
			ID:      "test-memory-2",
			Content: "Bought groceries at Whole Foods yesterday: organic bananas, quinoa, Greek yogurt, spinach, and dark chocolate. Spent about $65 total.",
		},
		{
			ID:      "test-memory-3",
			Content: "Meeting with Dr. Johnson about my knee injury is scheduled for next Friday at 2 PM. Need to bring previous X-rays and insurance card.",
		},
		{
			ID:      "test-memory-4",
			Content: "Mom's birthday is coming up on March 15th. She mentioned wanting a new garden hose and some kitchen towels. Budget around $50.",
		},
		{
			ID:      "test-memory-5",
			Content: "Started reading \"The Seven Husbands of Evelyn Hugo\" by Taylor Jenkins Reid. Really enjoying it so far - finished chapter 3 last night.",
		},
	}
}

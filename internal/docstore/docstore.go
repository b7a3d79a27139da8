// Package docstore is a canned knowledge base standing in for a real
// retrieval pipeline. Lookups are keyword matches over a fixed note set.
package docstore

import (
	"strings"
)

type note struct {
	keywords []string
	text     string
}

// Store answers free-text lookups against the canned notes.
type Store struct {
	notes []note
}

// NewStore creates the document store with the sample's EV knowledge notes.
func NewStore() *Store {
	return &Store{notes: []note{
		{
			keywords: []string{"bev", "battery electric"},
			text: "A Battery Electric Vehicle (BEV) runs entirely on a battery-powered " +
				"electric drivetrain with no internal combustion engine. BEVs have zero " +
				"tailpipe emissions and are charged from an external electricity source.",
		},
		{
			keywords: []string{"phev", "plug-in hybrid"},
			text: "A Plug-in Hybrid Electric Vehicle (PHEV) combines a battery that can be " +
				"charged externally with a gasoline engine. PHEVs drive a limited distance " +
				"on electricity alone before the engine takes over.",
		},
		{
			keywords: []string{"cafv", "clean alternative fuel", "eligibility"},
			text: "Clean Alternative Fuel Vehicle (CAFV) eligibility marks whether a vehicle " +
				"qualifies for Washington State's clean alternative fuel vehicle tax " +
				"exemptions. Eligibility depends on the vehicle's electric-only range.",
		},
		{
			keywords: []string{"electric range", "range"},
			text: "Electric range is the distance a vehicle can travel on battery power " +
				"alone. For BEVs it is the full driving range; for PHEVs it is the " +
				"electric-only portion before the engine engages.",
		},
		{
			keywords: []string{"charging", "charger", "level 2", "dc fast"},
			text: "EV charging comes in three levels: Level 1 uses a standard wall outlet, " +
				"Level 2 uses a 240V circuit and is common for home and public charging, " +
				"and DC fast charging can restore most of a battery in under an hour.",
		},
		{
			keywords: []string{"rag", "retrieval augmented"},
			text: "Retrieval-Augmented Generation (RAG) grounds a language model on facts " +
				"retrieved from an external knowledge base, reducing hallucinations and " +
				"keeping answers specific and verifiable.",
		},
	}}
}

// Lookup returns the note that best matches the query, or a fallback message
// when nothing matches.
func (s *Store) Lookup(query string) string {
	lowered := strings.ToLower(query)

	best := -1
	bestHits := 0

	for i, n := range s.notes {
		hits := 0
		for _, kw := range n.keywords {
			if strings.Contains(lowered, kw) {
				hits++
			}
		}

		if hits > bestHits {
			best = i
			bestHits = hits
		}
	}

	if best < 0 {
		return "No specific information found related to your query in the document store. " +
			"Please try rephrasing or asking about a different topic."
	}

	return s.notes[best].text
}

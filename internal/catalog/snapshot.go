// Package catalog supplies pricing components to the quote calculator: an
// immutable snapshot with a name index, sources that load components from
// the local database, a price-list spreadsheet or a remote feed, and a
// caller-owned cache with expiry.
package catalog

import (
	"strings"

	"github.com/samber/lo"

	"bks/internal"
)

// Snapshot is an immutable view of the catalog taken at load time. Only
// components flagged active for automatic quoting are kept; the calculator
// never refetches or mutates it.
type Snapshot struct {
	components []internal.PricingComponent
	byName     map[string]internal.PricingComponent
}

func NewSnapshot(components []internal.PricingComponent) *Snapshot {
	active := lo.Filter(components, func(c internal.PricingComponent, _ int) bool {
		return c.Active && strings.TrimSpace(c.Name) != ""
	})

	byName := make(map[string]internal.PricingComponent, len(active))
	kept := make([]internal.PricingComponent, 0, len(active))
	for _, c := range active {
		// first entry wins on duplicate names
		if _, ok := byName[c.Name]; ok {
			continue
		}
		byName[c.Name] = c
		kept = append(kept, c)
	}

	return &Snapshot{components: kept, byName: byName}
}

// ByName looks a component up by exact name.
func (s *Snapshot) ByName(name string) (internal.PricingComponent, bool) {
	c, ok := s.byName[name]
	return c, ok
}

func (s *Snapshot) Components() []internal.PricingComponent {
	return s.components
}

func (s *Snapshot) Len() int {
	return len(s.components)
}

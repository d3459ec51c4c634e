package preset

import (
	"sort"

	"github.com/maruel/natural"
)

// sortedNames gives static tables a deterministic registration order.
func sortedNames[V any](table map[string]V) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

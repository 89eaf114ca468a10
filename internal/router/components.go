package router

import "sort"

// ComponentKind selects one of the three independent route tables.
type ComponentKind int

const (
	KindButton ComponentKind = iota
	KindSelect
	KindModal
)

func (k ComponentKind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindSelect:
		return "select"
	case KindModal:
		return "modal"
	default:
		return "unknown"
	}
}

type componentRoute struct {
	prefix  string
	handler Handler
}

// ComponentRouter maps custom-id prefixes to handlers, one table per
// component kind. Routing is deterministic: tables are kept sorted by
// descending prefix length and the first (longest) matching prefix wins.
type ComponentRouter struct {
	tables [3][]componentRoute
}

func NewComponentRouter() *ComponentRouter {
	return &ComponentRouter{}
}

// Register adds a (prefix, handler) route to kind's table. Empty prefixes
// and nil handlers are skipped; registering an existing prefix replaces
// its handler.
func (cr *ComponentRouter) Register(kind ComponentKind, prefix string, handler Handler) {
	if prefix == "" || handler == nil {
		return
	}
	table := cr.tables[kind]
	for i := range table {
		if table[i].prefix == prefix {
			table[i].handler = handler
			return
		}
	}
	table = append(table, componentRoute{prefix: prefix, handler: handler})
	sort.SliceStable(table, func(i, j int) bool {
		return len(table[i].prefix) > len(table[j].prefix)
	})
	cr.tables[kind] = table
}

// Route returns the handler for the longest registered prefix that
// customID starts with, case-sensitively. ok is false when no prefix
// matches.
func (cr *ComponentRouter) Route(kind ComponentKind, customID string) (Handler, bool) {
	for _, route := range cr.tables[kind] {
		if len(customID) >= len(route.prefix) && customID[:len(route.prefix)] == route.prefix {
			return route.handler, true
		}
	}
	return nil, false
}

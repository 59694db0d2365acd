package position

import (
	"sort"
	"strings"
)

const DefaultFormation = "4-3-3"

// Formation is a named, ordered list of slots. Its length is the starter headcount.
type Formation struct {
	Name  string
	Slots []Position
}

var catalog = map[string][]Position{
	"4-4-2": {GK, RB, CB, CB, LB, RW, CM, CM, LW, ST, ST},
	"4-2-4": {GK, RB, CB, CB, LB, CDM, CM, RW, ST, ST, LW},
	"4-3-3": {GK, RB, CB, CB, LB, CM, CDM, CAM, RW, ST, LW},
}

// LookupFormation returns the named formation and whether it exists in the catalog.
func LookupFormation(name string) (Formation, bool) {
	key := strings.TrimSpace(name)
	slots, ok := catalog[key]
	if !ok {
		return Formation{}, false
	}
	return Formation{Name: key, Slots: append([]Position(nil), slots...)}, true
}

// ResolveFormation falls back to fallback, and then to 4-3-3, when name is unknown.
func ResolveFormation(name, fallback string) Formation {
	if f, ok := LookupFormation(name); ok {
		return f
	}
	if f, ok := LookupFormation(fallback); ok {
		return f
	}
	f, _ := LookupFormation(DefaultFormation)
	return f
}

func FormationNames() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (f Formation) Size() int {
	return len(f.Slots)
}

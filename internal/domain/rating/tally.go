package rating

// Tally is the running vote counter persisted across matches.
// Counted remembers which ballots have already been added.
type Tally struct {
	Counts  map[string]map[string]int
	Counted map[string]struct{}
}

func NewTally() Tally {
	return Tally{
		Counts:  make(map[string]map[string]int),
		Counted: make(map[string]struct{}),
	}
}

func (t Tally) Count(category, uid string) int {
	if t.Counts == nil {
		return 0
	}
	return t.Counts[category][uid]
}

func (t Tally) HasCounted(ballotKey string) bool {
	_, ok := t.Counted[ballotKey]
	return ok
}

func (t Tally) Clone() Tally {
	out := NewTally()
	for category, byUID := range t.Counts {
		inner := make(map[string]int, len(byUID))
		for uid, n := range byUID {
			inner[uid] = n
		}
		out.Counts[category] = inner
	}
	for key := range t.Counted {
		out.Counted[key] = struct{}{}
	}
	return out
}

func (t Tally) add(category, uid string, n int) {
	inner, ok := t.Counts[category]
	if !ok {
		inner = make(map[string]int)
		t.Counts[category] = inner
	}
	inner[uid] += n
}

// TallyEntry is one changed counter, used by stores that persist rows.
type TallyEntry struct {
	Category string
	UID      string
	Prior    int
	Votes    int
}

// Changes lists the counters in next that differ from t.
func (t Tally) Changes(next Tally) []TallyEntry {
	var out []TallyEntry
	for category, byUID := range next.Counts {
		for uid, n := range byUID {
			if prior := t.Count(category, uid); prior != n {
				out = append(out, TallyEntry{Category: category, UID: uid, Prior: prior, Votes: n})
			}
		}
	}
	return out
}

// NewlyCounted lists ballot keys present in next but not in t.
func (t Tally) NewlyCounted(next Tally) []string {
	var out []string
	for key := range next.Counted {
		if !t.HasCounted(key) {
			out = append(out, key)
		}
	}
	return out
}

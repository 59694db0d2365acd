package rating

import "fmt"

// ThresholdAggregator gives +1 on each mapped attribute to every candidate who collected
// at least Threshold votes in a category within this batch of ballots.
type ThresholdAggregator struct {
	Threshold  int
	Categories Categories
	Bounds     Bounds
}

func (a *ThresholdAggregator) Mode() Mode {
	return ModeThreshold
}

func (a *ThresholdAggregator) Aggregate(s Snapshot) (Outcome, error) {
	counts, err := countVotes(s.Ballots, a.Categories, nil)
	if err != nil {
		return Outcome{}, err
	}

	deltas := DeltaSet{}
	for _, cat := range a.Categories {
		for uid, n := range counts[cat.ID] {
			if n < a.Threshold {
				continue
			}
			delta := deltas.forPlayer(uid)
			for _, attr := range cat.Attributes {
				delta.add(attr, 1)
			}
		}
	}
	deltas = deltas.compact()

	return Outcome{
		Mode:    ModeThreshold,
		Deltas:  deltas,
		Ratings: Apply(s.Ratings, deltas, a.Bounds),
		Tally:   s.Tally.Clone(),
	}, nil
}

// CumulativeAggregator keeps a running counter per category and candidate and credits
// floor(new/Threshold) - floor(old/Threshold) steps per run. Ballots already in the
// tally are skipped, so repeating a run over the same ballots credits nothing.
type CumulativeAggregator struct {
	Threshold  int
	Categories Categories
	Bounds     Bounds
}

func (a *CumulativeAggregator) Mode() Mode {
	return ModeCumulative
}

func (a *CumulativeAggregator) Aggregate(s Snapshot) (Outcome, error) {
	next := s.Tally.Clone()

	fresh := make([]Ballot, 0, len(s.Ballots))
	for _, b := range s.Ballots {
		if next.HasCounted(b.Key()) {
			continue
		}
		fresh = append(fresh, b)
	}

	batch, err := countVotes(fresh, a.Categories, next.Counted)
	if err != nil {
		return Outcome{}, err
	}

	deltas := DeltaSet{}
	for _, cat := range a.Categories {
		for uid, n := range batch[cat.ID] {
			before := next.Count(cat.ID, uid)
			next.add(cat.ID, uid, n)
			steps := Steps(before, before+n, a.Threshold)
			if steps == 0 {
				continue
			}
			delta := deltas.forPlayer(uid)
			for _, attr := range cat.Attributes {
				delta.add(attr, float64(steps))
			}
		}
	}
	deltas = deltas.compact()

	return Outcome{
		Mode:    ModeCumulative,
		Deltas:  deltas,
		Ratings: Apply(s.Ratings, deltas, a.Bounds),
		Tally:   next,
	}, nil
}

// Steps is the number of threshold boundaries crossed going from before to after.
func Steps(before, after, threshold int) int {
	if threshold <= 0 || after <= before {
		return 0
	}
	return after/threshold - before/threshold
}

// countVotes tallies ballots per category and candidate. When counted is non-nil each
// ballot key is recorded in it, and a key seen twice in one batch is counted once.
func countVotes(ballots []Ballot, categories Categories, counted map[string]struct{}) (map[string]map[string]int, error) {
	for _, b := range ballots {
		for id := range b.Votes {
			if _, ok := categories.Lookup(id); !ok {
				return nil, fmt.Errorf("ballot %s: %w: %s", b.Key(), ErrUnknownCategory, id)
			}
		}
	}

	out := make(map[string]map[string]int, len(categories))
	for _, b := range ballots {
		if counted != nil {
			if _, dup := counted[b.Key()]; dup {
				continue
			}
			counted[b.Key()] = struct{}{}
		}
		for id, uid := range b.Votes {
			if uid == "" {
				continue
			}
			inner, ok := out[id]
			if !ok {
				inner = make(map[string]int)
				out[id] = inner
			}
			inner[uid]++
		}
	}
	return out, nil
}

package rating

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnknownCategory  = errors.New("unknown vote category")
	ErrUnknownMode      = errors.New("unknown rating mode")
	ErrInvalidThreshold = errors.New("vote threshold must be > 0")
)

// Attribute is one of the six skill codes a rating is made of.
type Attribute string

const (
	SHO Attribute = "SHO"
	DRI Attribute = "DRI"
	DEF Attribute = "DEF"
	PAS Attribute = "PAS"
	PHY Attribute = "PHY"
	PAC Attribute = "PAC"
)

var Attributes = []Attribute{SHO, DRI, DEF, PAS, PHY, PAC}

func ParseAttribute(raw string) (Attribute, error) {
	candidate := Attribute(strings.ToUpper(strings.TrimSpace(raw)))
	for _, a := range Attributes {
		if a == candidate {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, raw)
}

// StatLine holds absolute attribute values for one player.
type StatLine map[Attribute]float64

func (s StatLine) Value(a Attribute, baseline float64) float64 {
	if v, ok := s[a]; ok {
		return v
	}
	return baseline
}

func (s StatLine) Clone() StatLine {
	out := make(StatLine, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s StatLine) Equal(other StatLine) bool {
	if len(s) != len(other) {
		return false
	}
	for a, v := range s {
		if w, ok := other[a]; !ok || w != v {
			return false
		}
	}
	return true
}

// Overall is the rounded mean of all six attributes, missing ones at baseline.
func (s StatLine) Overall(baseline float64) int {
	total := 0.0
	for _, a := range Attributes {
		total += s.Value(a, baseline)
	}
	return int(math.Round(total / float64(len(Attributes))))
}

// Delta is a signed per-attribute adjustment.
type Delta map[Attribute]float64

func (d Delta) add(a Attribute, v float64) {
	d[a] += v
}

func (d Delta) IsZero() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

// DeltaSet maps player uid to its adjustment.
type DeltaSet map[string]Delta

func (d DeltaSet) forPlayer(uid string) Delta {
	delta, ok := d[uid]
	if !ok {
		delta = Delta{}
		d[uid] = delta
	}
	return delta
}

// compact drops players whose delta is entirely zero.
func (d DeltaSet) compact() DeltaSet {
	for uid, delta := range d {
		if delta.IsZero() {
			delete(d, uid)
		}
	}
	return d
}

// Bounds controls how deltas become absolute values.
type Bounds struct {
	Baseline float64
	Min      float64
	Max      float64
}

func DefaultBounds() Bounds {
	return Bounds{Baseline: 60, Min: 0, Max: 99}
}

func (b Bounds) clamp(v float64) float64 {
	if b.Max > b.Min {
		v = math.Min(math.Max(v, b.Min), b.Max)
	}
	return v
}

// Apply adds deltas onto prior stats and returns the new absolute values of every touched player.
// Values are rounded to two decimals and clamped to bounds.
func Apply(prior map[string]StatLine, deltas DeltaSet, bounds Bounds) map[string]StatLine {
	out := make(map[string]StatLine, len(deltas))
	for uid, delta := range deltas {
		current := prior[uid]
		next := current.Clone()
		for a, v := range delta {
			next[a] = bounds.clamp(round2(current.Value(a, bounds.Baseline) + v))
		}
		out[uid] = next
	}
	return out
}

// Applied is what a commit of next over prior actually changes, after rounding and clamping.
// Players whose values did not move are left out.
func Applied(prior, next map[string]StatLine, baseline float64) DeltaSet {
	out := DeltaSet{}
	for uid, line := range next {
		before := prior[uid]
		for _, a := range Attributes {
			if diff := round2(line.Value(a, baseline) - before.Value(a, baseline)); diff != 0 {
				out.forPlayer(uid).add(a, diff)
			}
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

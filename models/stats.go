package models

import (
	"fmt"

	"little-realm/server/errs"
)

// Stat names a numeric attribute.
type Stat string

const (
	StatHP   Stat = "HP"
	StatMP   Stat = "MP"
	StatMND  Stat = "MND"
	StatSTA  Stat = "STA"
	StatSTR  Stat = "STR"
	StatSPD  Stat = "SPD"
	StatDMG  Stat = "DMG" // item bonus only
	StatPDEF Stat = "PDEF"
	StatMDEF Stat = "MDEF"
)

// BaseStats are the stats every lifeform carries.
var BaseStats = []Stat{StatHP, StatMP, StatMND, StatSTA, StatSTR, StatSPD, StatPDEF, StatMDEF}

// Valid reports whether s is a base stat or an item-only stat.
func (s Stat) Valid() bool {
	return s == StatDMG || s.base()
}

func (s Stat) base() bool {
	for _, b := range BaseStats {
		if s == b {
			return true
		}
	}
	return false
}

// ParseStat validates a stat name.
func ParseStat(name string) (Stat, error) {
	s := Stat(name)
	if !s.Valid() {
		return "", invalidStat(name)
	}
	return s, nil
}

func invalidStat(name string) error {
	return errs.New(errs.InvalidStat, fmt.Sprintf("%s is not a valid stat", name))
}

// Stats is a lifeform stat block.
type Stats map[Stat]int

// NewStats builds a stat block with every base stat present. Names outside
// BaseStats are rejected.
func NewStats(values map[string]int) (Stats, error) {
	stats := make(Stats, len(BaseStats))
	for _, s := range BaseStats {
		stats[s] = 0
	}
	for name, v := range values {
		s := Stat(name)
		if !s.base() {
			return nil, invalidStat(name)
		}
		stats[s] = v
	}
	return stats, nil
}

// Get returns the value of s, zero when absent.
func (s Stats) Get(stat Stat) int {
	return s[stat]
}

// Clone returns an independent copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ItemStats are the bonuses an equipped item grants plus its weight.
type ItemStats struct {
	Bonuses map[Stat]int `json:"bonuses,omitempty"`
	Weight  int          `json:"weight"`
}

// NewItemStats validates bonus names.
func NewItemStats(bonuses map[string]int, weight int) (ItemStats, error) {
	out := ItemStats{Bonuses: make(map[Stat]int, len(bonuses)), Weight: weight}
	for name, v := range bonuses {
		s, err := ParseStat(name)
		if err != nil {
			return ItemStats{}, err
		}
		out.Bonuses[s] = v
	}
	return out, nil
}

// Bonus returns the bonus for stat, zero when absent.
func (is ItemStats) Bonus(stat Stat) int {
	return is.Bonuses[stat]
}

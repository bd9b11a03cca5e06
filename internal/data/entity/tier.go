package entity

type Tier string

const (
	TierGold     Tier = "gold"
	TierSilver   Tier = "silver"
	TierPlatinum Tier = "platinum"
	TierBlocked  Tier = "blocked"
)

// tierCycle is the order an admin walks through when repainting a seat by click.
var tierCycle = []Tier{TierGold, TierSilver, TierPlatinum, TierBlocked}

func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	return t, t.Valid()
}

func (t Tier) Valid() bool {
	switch t {
	case TierGold, TierSilver, TierPlatinum, TierBlocked:
		return true
	}
	return false
}

// Sellable reports whether seats of this tier can ever be booked.
func (t Tier) Sellable() bool {
	return t.Valid() && t != TierBlocked
}

// Next returns the tier following t in the gold → silver → platinum → blocked rotation.
// Unknown tiers restart the rotation at gold.
func (t Tier) Next() Tier {
	for i, c := range tierCycle {
		if c == t {
			return tierCycle[(i+1)%len(tierCycle)]
		}
	}
	return TierGold
}

package scoring

// Tier is a coarse band of a 0-100 rating.
type Tier int

// Tiers from best to worst.
const (
	TierElite Tier = iota
	TierStrong
	TierGood
	TierNeutral
	TierWeak
	TierPoor
	TierBad
)

var tierNames = [...]string{"elite", "strong", "good", "neutral", "weak", "poor", "bad"} //nolint:gochecknoglobals // lookup table

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "unknown"
	}
	return tierNames[t]
}

// Classify places a rating in its tier.
func Classify(rating float64) Tier {
	switch {
	case rating > 85:
		return TierElite
	case rating > 70:
		return TierStrong
	case rating > 55:
		return TierGood
	case rating < 15:
		return TierBad
	case rating < 30:
		return TierPoor
	case rating < 45:
		return TierWeak
	default:
		return TierNeutral
	}
}

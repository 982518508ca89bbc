// Package quota holds the tier-based agent limit policy. It is a pure
// decision layer: no storage access, no side effects, so new tiers are
// added by extending the limit table without touching registration logic.
package quota

// Tier classifies a sponsor's plan.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Unlimited marks a tier with no agent cap.
const Unlimited = -1

// agentLimits maps each tier to the maximum number of agent profiles a
// sponsor on that tier may own.
var agentLimits = map[Tier]int{
	TierFree: 1,
	TierPro:  Unlimited,
}

// Decision is the outcome of a quota evaluation.
type Decision struct {
	Allow bool
	// Limit is the cap that applied, or Unlimited.
	Limit int
}

// LimitFor returns the agent cap for a tier. Unknown tiers fall back to the
// free-tier limit rather than granting unlimited agents.
func LimitFor(tier Tier) int {
	if limit, ok := agentLimits[tier]; ok {
		return limit
	}
	return agentLimits[TierFree]
}

// Decide reports whether a sponsor on the given tier, currently owning
// currentCount agent profiles, may register one more.
func Decide(tier Tier, currentCount int) Decision {
	limit := LimitFor(tier)
	if limit == Unlimited || currentCount < limit {
		return Decision{Allow: true, Limit: limit}
	}
	return Decision{Allow: false, Limit: limit}
}

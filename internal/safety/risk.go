// Package safety classifies messages into risk tiers and supplies the fixed
// crisis replies used in place of model generation for non-low tiers.
package safety

import "strings"

type RiskTier string

const (
	LowRisk    RiskTier = "low_risk"
	MediumRisk RiskTier = "medium_risk"
	HighRisk   RiskTier = "high_risk"
)

func (t RiskTier) String() string {
	return string(t)
}

// Elevated reports whether the tier bypasses generation.
func (t RiskTier) Elevated() bool {
	return t == MediumRisk || t == HighRisk
}

// Phrases are checked in order; the first hit decides the tier.
var (
	highRiskPhrases = []string{
		"suicide",
		"kill myself",
		"end my life",
		"want to die",
		"don't want to live",
		"better off dead",
	}

	mediumRiskPhrases = []string{
		"can't go on",
		"hopeless",
		"no point",
		"give up",
		"nothing matters",
		"can't take it",
	}
)

// HighRiskPhrases returns a copy of the high-risk keyword list.
func HighRiskPhrases() []string {
	return append([]string(nil), highRiskPhrases...)
}

// MediumRiskPhrases returns a copy of the medium-risk keyword list.
func MediumRiskPhrases() []string {
	return append([]string(nil), mediumRiskPhrases...)
}

// Assess returns the risk tier for text. It never fails; empty input is low risk.
func Assess(text string) RiskTier {
	tier, _ := Match(text)
	return tier
}

// Match is Assess plus the phrase that decided the tier ("" for low risk).
// High-risk phrases are always checked before medium-risk ones.
func Match(text string) (RiskTier, string) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return LowRisk, ""
	}

	for _, phrase := range highRiskPhrases {
		if strings.Contains(lower, phrase) {
			return HighRisk, phrase
		}
	}
	for _, phrase := range mediumRiskPhrases {
		if strings.Contains(lower, phrase) {
			return MediumRisk, phrase
		}
	}
	return LowRisk, ""
}

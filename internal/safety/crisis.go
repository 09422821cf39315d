package safety

const highRiskResponse = `🚨 **I'm deeply concerned about your safety.**

**Please contact emergency services immediately:**
• Call 988 (Suicide & Crisis Lifeline)
• Text HOME to 741741 (Crisis Text Line)
• Go to your nearest emergency room

You deserve support from trained professionals right now.`

const mediumRiskResponse = `🤗 **It sounds like you're going through an incredibly difficult time.**

**Please consider reaching out to:**
• A trusted friend or family member
• A mental health professional
• A support group in your community

Would you like help finding local mental health resources?`

// CrisisResponse returns the fixed reply for an elevated tier. For low risk it
// returns ("", false) and the caller proceeds to normal generation.
func CrisisResponse(tier RiskTier) (string, bool) {
	switch tier {
	case HighRisk:
		return highRiskResponse, true
	case MediumRisk:
		return mediumRiskResponse, true
	default:
		return "", false
	}
}

// Contact is an emergency line for one region.
type Contact struct {
	Region string `json:"region"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

var emergencyContacts = []Contact{
	{Region: "us", Number: "988", Name: "Suicide & Crisis Lifeline"},
	{Region: "uk", Number: "116 123", Name: "Samaritans"},
	{Region: "ca", Number: "1-833-456-4566", Name: "Canada Crisis Services"},
}

// EmergencyContacts returns the emergency lines, US first.
func EmergencyContacts() []Contact {
	return append([]Contact(nil), emergencyContacts...)
}

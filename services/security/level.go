package security

// Level is the advisory security rating attached to login
// notifications.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Weights holds the fixed scoring parameters for one realm. The admin
// profile starts higher, penalizes anomalies harder and demands a
// higher score for each band.
type Weights struct {
	Base             int
	BotPenalty       int
	PrivateIPPenalty int
	SuperAdminBonus  int
	HighThreshold    int
	MediumThreshold  int
}

func UserWeights() Weights {
	return Weights{
		Base:             0,
		BotPenalty:       2,
		PrivateIPPenalty: 1,
		HighThreshold:    4,
		MediumThreshold:  2,
	}
}

func AdminWeights() Weights {
	return Weights{
		Base:             2,
		BotPenalty:       3,
		PrivateIPPenalty: 2,
		SuperAdminBonus:  2,
		HighThreshold:    6,
		MediumThreshold:  4,
	}
}

// Score maps ClientInfo to a Level using the realm's weights. Each
// recognized attribute adds a point; bots and private-network origins
// subtract.
func Score(info ClientInfo, w Weights, superAdmin bool) Level {
	score := w.Base

	if info.countryKnown() {
		score++
	}
	if info.cityKnown() {
		score++
	}
	if info.browserKnown() && !info.Bot {
		score++
	}
	if info.osKnown() {
		score++
	}
	if info.DeviceType != "" {
		score++
	}
	if superAdmin {
		score += w.SuperAdminBonus
	}

	if info.Bot {
		score -= w.BotPenalty
	}
	if isPrivateIP(info.IP) {
		score -= w.PrivateIPPenalty
	}

	switch {
	case score >= w.HighThreshold:
		return LevelHigh
	case score >= w.MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

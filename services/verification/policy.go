package verification

import (
	"time"

	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/security"
)

// Policy parameterizes one realm's verification behavior. The user and
// admin services run the same code with different policies instead of
// maintaining two copies of the flow.
type Policy struct {
	Realm        Realm
	CodeTTL      time.Duration
	MaxPerHour   int
	ResendDelay  time.Duration
	MaxAttempts  int
	ScoreWeights security.Weights
}

func UserPolicy(cfg *config.Config) Policy {
	return policyFrom(RealmUser, cfg.Verification, security.UserWeights())
}

func AdminPolicy(cfg *config.Config) Policy {
	return policyFrom(RealmAdmin, cfg.AdminVerification, security.AdminWeights())
}

func policyFrom(realm Realm, vc config.VerificationConfig, weights security.Weights) Policy {
	p := Policy{
		Realm:        realm,
		CodeTTL:      vc.CodeTTL,
		MaxPerHour:   vc.MaxPerHour,
		ResendDelay:  vc.ResendDelay,
		MaxAttempts:  vc.MaxAttempts,
		ScoreWeights: weights,
	}
	if p.CodeTTL <= 0 {
		p.CodeTTL = 10 * time.Minute
	}
	if p.MaxPerHour <= 0 {
		p.MaxPerHour = 5
	}
	if p.ResendDelay <= 0 {
		p.ResendDelay = 60 * time.Second
	}
	return p
}

package handoff

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidAssertion   = errors.New("invalid step-up assertion")
	ErrExpiredAssertion   = errors.New("step-up assertion has expired")
	ErrMalformedAssertion = errors.New("malformed step-up assertion")
	ErrInvalidSignature   = errors.New("invalid step-up assertion signature")
	ErrRealmMismatch      = errors.New("step-up assertion issued for a different realm")
)

// Claims carries the result of a completed verification so the main
// application can trust it without re-checking the code store.
type Claims struct {
	Realm   string `json:"realm"`
	Purpose string `json:"purpose"`
	JTI     string `json:"jti"`
	jwt.RegisteredClaims
}

// Service mints and validates short-lived assertions proving a subject
// passed code verification.
type Service struct {
	config *config.Config
	logger *logging.Service
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) ExpirySeconds() int {
	return int(s.expiry().Seconds())
}

func (s *Service) expiry() time.Duration {
	if s.config.Handoff.Expiry > 0 {
		return s.config.Handoff.Expiry
	}
	return 5 * time.Minute
}

// Issue signs an assertion binding the subject, realm and purpose of
// the verification that just succeeded.
func (s *Service) Issue(subjectID, realm, purpose string) (string, error) {
	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		Realm:   realm,
		Purpose: purpose,
		JTI:     jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.Handoff.Issuer,
			Subject:   subjectID,
			Audience:  []string{s.config.Handoff.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry())),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Handoff.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign step-up assertion", zap.Error(err))
		}
		return "", fmt.Errorf("failed to issue step-up assertion: %w", err)
	}

	return tokenString, nil
}

// Validate parses an assertion and pins the algorithm to HS256 before
// trusting the signature.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return []byte(s.config.Handoff.SecretKey), nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("step-up assertion validation failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredAssertion
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedAssertion
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidAssertion
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAssertion
	}
	return claims, nil
}

// ValidateForRealm is Validate plus a realm pin, for callers that know
// which realm the assertion must belong to.
func (s *Service) ValidateForRealm(tokenString, realm string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Realm != realm {
		if s.logger != nil {
			s.logger.Warn("step-up assertion realm mismatch",
				zap.String("expected", realm),
				zap.String("got", claims.Realm))
		}
		return nil, ErrRealmMismatch
	}
	return claims, nil
}

package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

// VerifierConfig tunes bearer-credential verification.
type VerifierConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// JWTVerifier validates HS256 bearer tokens issued by the society identity
// provider and extracts the subject identifier. It implements
// port.TokenVerifier.
type JWTVerifier struct {
	cfg    VerifierConfig
	parser *jwt.Parser
	now    func() time.Time
}

// NewJWTVerifier constructs a verifier for the supplied configuration.
func NewJWTVerifier(cfg VerifierConfig) (*JWTVerifier, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt verifier: secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.ClockSkew > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.ClockSkew))
	}

	return &JWTVerifier{
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (v *JWTVerifier) WithClock(clock func() time.Time) *JWTVerifier {
	if clock != nil {
		v.now = clock
	}
	return v
}

// Verify parses and validates the credential, returning the subject claim.
func (v *JWTVerifier) Verify(ctx context.Context, credential string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrTokenInvalid, err)
	}

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", port.ErrTokenInvalid
	}

	claims := jwt.RegisteredClaims{}
	token, err := v.parser.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %v", port.ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %v", port.ErrTokenInvalid, err)
	}

	if !token.Valid {
		return "", port.ErrTokenInvalid
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject claim", port.ErrTokenInvalid)
	}

	return subject, nil
}

var _ port.TokenVerifier = (*JWTVerifier)(nil)

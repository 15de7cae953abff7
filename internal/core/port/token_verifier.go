package port

import (
	"context"
	"errors"
)

// Verification failures reported by TokenVerifier implementations. Callers
// match with errors.Is; wrapped detail stays available for logging.
var (
	ErrTokenInvalid = errors.New("credential is invalid")
	ErrTokenExpired = errors.New("credential has expired")
)

// TokenVerifier authenticates a raw bearer credential and yields the subject
// identifier it was issued for. The platform treats the issuer as a black
// box: signature scheme, claims layout and key rotation are its concern.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (subjectID string, err error)
}

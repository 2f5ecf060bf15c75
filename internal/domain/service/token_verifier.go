package service

import "context"

// TokenVerifier checks a bearer token and returns the user id it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

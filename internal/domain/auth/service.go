package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// VerifyCredentials checks email and password and returns who they belong to.
	VerifyCredentials(ctx context.Context, email, password string) (Identity, error)
}

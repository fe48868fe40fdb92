package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
	}
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AuthServiceImpl) authenticate(ctx context.Context, email, password string) (user.User, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, auth.NormalizedEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, auth.ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == "" {
		return user.User{}, auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(password)); err != nil {
		return user.User{}, auth.ErrInvalidCredentials
	}

	if !userData.IsActive {
		return user.User{}, auth.ErrAccountInactive
	}

	return userData, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.authenticate(ctx, loginReq.Email, loginReq.Password)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User: auth.UserBrief{
			ID:         userData.ID,
			Name:       userData.Name,
			Email:      userData.Email,
			Role:       userData.Role,
			EmployeeID: userData.EmployeeID,
		},
	}, nil
}

// VerifyCredentials implements auth.AuthService.
func (a *AuthServiceImpl) VerifyCredentials(ctx context.Context, email, password string) (auth.Identity, error) {
	userData, err := a.authenticate(ctx, email, password)
	if err != nil {
		return auth.Identity{}, err
	}

	identity := auth.Identity{
		UserID: userData.ID,
		Email:  userData.Email,
		Role:   userData.Role,
	}
	if userData.EmployeeID != nil {
		identity.EmployeeID = *userData.EmployeeID
	}
	return identity, nil
}

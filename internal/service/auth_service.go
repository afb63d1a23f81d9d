package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "workout-tracker"
)

// MsgUsernameTaken is reported on the username field of a duplicate registration.
const MsgUsernameTaken = "A user with that username already exists."

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService issues and checks the JWTs every other endpoint relies on.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout blacklists a refresh token of userID.
	Logout(ctx context.Context, userID uint, refreshToken string) error
	// Authenticate resolves an access token to its user.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo          repository.UserRepository
	revokedRepo       repository.RevokedTokenRepository
	jwtSecret         []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, revokedRepo repository.RevokedTokenRepository, jwtSecret string, accessExpiration, refreshExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if accessExpiration <= 0 {
		accessExpiration = 5 * time.Minute
	}
	if refreshExpiration <= 0 {
		refreshExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:          userRepo,
		revokedRepo:       revokedRepo,
		jwtSecret:         []byte(jwtSecret),
		accessExpiration:  accessExpiration,
		refreshExpiration: refreshExpiration,
	}
}

// Register creates a user. The caller has already checked the field shapes.
func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	taken := validation.Errors{"username": {MsgUsernameTaken}}

	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil, taken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, taken
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	access, err := s.generateJWT(user.ID, tokenTypeAccess, s.accessExpiration)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	refresh, err := s.generateJWT(user.ID, tokenTypeRefresh, s.refreshExpiration)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.liveRefreshClaims(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if _, err := s.userRepo.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	access, err := s.generateJWT(claims.UserID, tokenTypeAccess, s.accessExpiration)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return access, nil
}

func (s *authService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	claims, err := s.liveRefreshClaims(ctx, refreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		return ErrInvalidToken
	}

	return s.revokedRepo.Revoke(ctx, &domain.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		RevokedAt: time.Now().UTC(),
	})
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.parseJWT(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// liveRefreshClaims parses a refresh token and rejects blacklisted ones.
func (s *authService) liveRefreshClaims(ctx context.Context, token string) (*jwtClaims, error) {
	claims, err := s.parseJWT(token, tokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revokedRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID    uint   `json:"uid"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// generateJWT signs a token of the given type. Every token carries a
// random jti so a refresh token can be blacklisted individually.
func (s *authService) generateJWT(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) parseJWT(tokenString, tokenType string) (*jwtClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.TokenType != tokenType || claims.UserID == 0 || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

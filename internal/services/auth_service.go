package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password, name string, tenantID uuid.UUID) (*models.User, *models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.TokenResponse, error)
	GenerateToken(userID, tenantID uuid.UUID) (*models.TokenResponse, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) AuthServiceInterface {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Signup registers a new user. An empty tenantID starts a fresh tenant,
// which makes the first signup of an organization self-service.
func (s *authService) Signup(ctx context.Context, email, password, name string, tenantID uuid.UUID) (*models.User, *models.TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, nil, fmt.Errorf("password must be at least 8 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("name is required")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, fmt.Errorf("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := "member"
	if tenantID == uuid.Nil {
		tenantID = uuid.New()
		role = "owner"
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateToken(user.ID, user.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login verifies the password and issues an access token.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status != "active" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID, user.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// GenerateToken signs an HS256 access token carrying the user and tenant IDs.
func (s *authService) GenerateToken(userID, tenantID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID.String(),
		"tenant_id": tenantID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(accessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

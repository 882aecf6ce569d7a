package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Auth ---
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDuplicate      = errors.New("username or email already taken")
	ErrAuthValidation     = errors.New("auth data validation error")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// --- Auth DTOs ---

type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3"`
	Password string  `json:"password" binding:"required,min=8"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPair is the login/refresh response body.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user,omitempty"`
}

// --- AuthService Interface ---

type AuthService interface {
	Register(req RegisterRequest, actorID *int64) (*models.User, error)
	Login(req LoginRequest) (*TokenPair, error)
	Refresh(req RefreshRequest) (*TokenPair, error)
	GetUserByID(id int64) (*models.User, error)
}

type authService struct {
	authRepo repositories.AuthRepository
	audit    AuditRecorder
	db       *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, audit AuditRecorder, db *sql.DB) AuthService {
	return &authService{authRepo: authRepo, audit: audit, db: db}
}

// Register creates a back-office account. Role defaults to Trainer; only
// the two known roles are accepted.
func (s *authService) Register(req RegisterRequest, actorID *int64) (*models.User, error) {
	if utils.IsEmpty(req.Username) || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: username and a password of at least 8 characters are required", ErrAuthValidation)
	}
	if req.Email != nil && *req.Email != "" && !utils.IsValidEmail(*req.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrAuthValidation)
	}
	role := req.Role
	if role == "" {
		role = models.RoleTrainer
	}
	if role != models.RoleAdmin && role != models.RoleTrainer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrAuthValidation, role)
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
	}
	id, err := s.authRepo.CreateUser(s.db, user, string(hash))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.Record("user.create", "User", id, fmt.Sprintf("User %q registered as %s", user.Username, role), actorID)
	return s.authRepo.FindUserByID(id)
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *authService) Login(req LoginRequest) (*TokenPair, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	user, hash, err := s.authRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", req.Username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh pair. The user row is
// re-read so a deactivated account cannot keep rotating tokens.
func (s *authService) Refresh(req RefreshRequest) (*TokenPair, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	claims, err := utils.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.authRepo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.issueTokens(user)
}

// GetUserByID backs the /auth/me endpoint.
func (s *authService) GetUserByID(id int64) (*models.User, error) {
	if s.db == nil {
		return nil, ErrUserNotFound
	}
	user, err := s.authRepo.FindUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (s *authService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

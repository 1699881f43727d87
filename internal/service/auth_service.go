package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication and user account management
type AuthService struct {
	userRepo        domain.UserRepository
	tokens          *auth.TokenManager
	tokenTTL        time.Duration
	defaultPassword string
	logger          *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	tokenTTL time.Duration,
	defaultPassword string,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		tokenTTL:        tokenTTL,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

// LoginResult represents login response
type LoginResult struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
	TokenType string `json:"token_type"`
}

// CreateUserInput captures an admin user creation request
type CreateUserInput struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
	Password  string `json:"password"`
}

// UpdateUserInput captures an admin user update request
type UpdateUserInput struct {
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
	Active    *bool  `json:"active"`
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		s.logger.Info("login attempt with non-existent email", slog.String("email", email))
		return nil, errors.New("invalid credentials")
	}

	if !user.Active {
		s.logger.Info("login attempt on inactive account", slog.String("user_id", user.ID))
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, errors.New("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.CompanyID, user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		Token:     token,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// CreateUser provisions an account. Admin only. When no password is given
// the configured default is applied so the operator can hand it out.
func (s *AuthService) CreateUser(input CreateUserInput) (*domain.UserAccount, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.FullName == "" {
		return nil, errors.New("email and full_name are required")
	}
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleUser {
		return nil, fmt.Errorf("invalid role: %s", input.Role)
	}
	if input.Role == domain.RoleUser && input.CompanyID == "" {
		return nil, errors.New("company_id is required for regular users")
	}

	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, errors.New("email already registered")
	}

	password := input.Password
	if password == "" {
		password = s.defaultPassword
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to create user")
	}

	user := &domain.UserAccount{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     input.FullName,
		Role:         input.Role,
		CompanyID:    input.CompanyID,
		Active:       true,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to create user")
	}

	s.logger.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
		slog.String("company_id", user.CompanyID),
	)
	return user, nil
}

// UpdateUser applies an admin edit to an existing account
func (s *AuthService) UpdateUser(userID string, input UpdateUserInput) (*domain.UserAccount, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Role != "" {
		if input.Role != domain.RoleAdmin && input.Role != domain.RoleUser {
			return nil, fmt.Errorf("invalid role: %s", input.Role)
		}
		user.Role = input.Role
	}
	if input.CompanyID != "" {
		user.CompanyID = input.CompanyID
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account. Actors cannot delete themselves.
func (s *AuthService) DeleteUser(actorID, userID string) error {
	if actorID == userID {
		return errors.New("cannot delete own account")
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", slog.String("user_id", userID), slog.String("actor_id", actorID))
	return nil
}

// GetUser retrieves a single account
func (s *AuthService) GetUser(userID string) (*domain.UserAccount, error) {
	return s.userRepo.GetByID(userID)
}

// ListUsers returns all accounts, or one company's accounts when
// companyID is non-empty.
func (s *AuthService) ListUsers(companyID string) ([]domain.UserAccount, error) {
	if companyID != "" {
		return s.userRepo.ListByCompany(companyID)
	}
	return s.userRepo.List()
}

// ChangePassword changes a user's own password
func (s *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("new password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.New("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to update user password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	s.logger.Info("user changed password", slog.String("user_id", userID))
	return nil
}

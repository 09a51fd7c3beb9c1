package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/mapper"
	"github.com/tripdesk/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgResetRequested     = "If the account exists, password reset instructions have been sent"
)

// ResetNotifier delivers password reset tokens to users. The default
// implementation only logs that a token was issued.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *domain.User, token string, expiresAt time.Time) error
}

type logResetNotifier struct {
	logger *zap.Logger
}

func (n logResetNotifier) SendPasswordReset(_ context.Context, user *domain.User, _ string, expiresAt time.Time) error {
	n.logger.Info("password reset token issued",
		zap.String("userID", user.ID.String()),
		zap.Time("expiresAt", expiresAt),
	)
	return nil
}

// AuthService handles sign-up, sign-in, sign-out and password resets. Every
// operation reports its outcome as an AuthResult.
type AuthService struct {
	userRepo  *repository.UserRepository
	resetRepo *repository.PasswordResetRepository
	tokens    *auth.TokenManager
	notifier  ResetNotifier
	resetTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *repository.UserRepository,
	resetRepo *repository.PasswordResetRepository,
	tokens *auth.TokenManager,
	resetTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokens:    tokens,
		notifier:  logResetNotifier{logger: logger},
		resetTTL:  resetTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// SetResetNotifier replaces the reset token delivery
func (s *AuthService) SetResetNotifier(n ResetNotifier) {
	s.notifier = n
}

func failure(msg string) *domain.AuthResult {
	return &domain.AuthResult{Success: false, Error: msg}
}

// SignUp registers a new account. Self sign-up is limited to the agent and
// guest portals; staff accounts are created by admins.
func (s *AuthService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.AuthResult, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleGuest
	}
	if role != domain.RoleAgent && role != domain.RoleGuest {
		return failure("This role cannot be chosen at sign-up"), nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return failure("An account with this email already exists"), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         role,
		CompanyName:  req.CompanyName,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return failure("An account with this email already exists"), nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up",
		zap.String("userID", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return s.issue(ctx, user, "Account created")
}

// SignIn checks credentials and issues an access token
func (s *AuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(msgInvalidCredentials), nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("sign-in rejected", zap.String("userID", user.ID.String()))
		return failure(msgInvalidCredentials), nil
	}
	if !user.IsActive {
		return failure("This account has been deactivated"), nil
	}

	at := s.now().UTC()
	if err := s.userRepo.RecordLogin(ctx, user.ID, at); err != nil {
		s.logger.Warn("failed to record login", zap.String("userID", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &at

	return s.issue(ctx, user, "Signed in")
}

func (s *AuthService) issue(_ context.Context, user *domain.User, message string) (*domain.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToUserDTO(user)
	return &domain.AuthResult{
		Success:   true,
		Message:   message,
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      &dto,
	}, nil
}

// SignOut invalidates every token issued to the current user
func (s *AuthService) SignOut(ctx context.Context) (*domain.AuthResult, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok || userCtx.IsSystem {
		return nil, ErrUserContextRequired
	}
	if err := s.userRepo.BumpTokenVersion(ctx, userCtx.UserID); err != nil {
		return nil, fmt.Errorf("failed to sign out: %w", err)
	}
	s.logger.Info("user signed out", zap.String("userID", userCtx.UserID.String()))
	return &domain.AuthResult{Success: true, Message: "Signed out"}, nil
}

// RequestPasswordReset issues a single-use reset token. The result is the
// same whether or not the email belongs to an account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) (*domain.AuthResult, error) {
	ok := &domain.AuthResult{Success: true, Message: msgResetRequested}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ok, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return ok, nil
	}

	now := s.now().UTC()
	if err := s.resetRepo.InvalidateForUser(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return nil, err
	}
	record := &domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.resetTTL),
	}
	if err := s.resetRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, token, record.ExpiresAt); err != nil {
		s.logger.Error("failed to deliver password reset", zap.String("userID", user.ID.String()), zap.Error(err))
	}
	return ok, nil
}

// ResetPassword consumes a reset token and sets a new password. Existing
// sessions are signed out.
func (s *AuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) (*domain.AuthResult, error) {
	now := s.now().UTC()
	record, err := s.resetRepo.GetValid(ctx, auth.HashResetToken(req.Token), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure("Reset link is invalid or has expired"), nil
		}
		return nil, fmt.Errorf("failed to load reset token: %w", err)
	}

	if err := s.resetRepo.MarkUsed(ctx, record.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure("Reset link is invalid or has expired"), nil
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePassword(ctx, record.UserID, hash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset completed", zap.String("userID", record.UserID.String()))
	return &domain.AuthResult{Success: true, Message: "Password updated"}, nil
}

// Me returns the current user and the shell their role is routed to
func (s *AuthService) Me(ctx context.Context) (*domain.MeDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	if userCtx.IsSystem {
		return &domain.MeDTO{
			User:  domain.UserDTO{ID: userCtx.UserID, Email: userCtx.Email, DisplayName: userCtx.DisplayName, Role: userCtx.Role, IsActive: true},
			Shell: auth.ShellFor(userCtx.Role),
		}, nil
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &domain.MeDTO{User: mapper.ToUserDTO(user), Shell: auth.ShellFor(user.Role)}, nil
}

// UserService is the admin side of account management
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create adds an account with any role
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		CompanyName:  req.CompanyName,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "create user")
	}

	s.logger.Info("user created", zap.String("userID", user.ID.String()), zap.String("role", string(user.Role)))
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// List returns users, optionally of one role
func (s *UserService) List(ctx context.Context, role *domain.UserRoleType, page, pageSize int) (*domain.PaginatedResponse, error) {
	if role != nil && !role.IsValid() {
		return nil, ErrInvalidRole
	}
	users, total, err := s.userRepo.List(ctx, role, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// ListByRole returns active users of a role, used to pick assignees
func (s *UserService) ListByRole(ctx context.Context, role domain.UserRoleType) ([]domain.UserDTO, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	users, err := s.userRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}

// UpdateRole changes a user's role and active flag. Outstanding tokens are
// invalidated so the new shell applies on next sign-in.
func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRoleRequest) (*domain.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx.UserID == id && req.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", ErrPermissionDenied)
	}

	user.Role = req.Role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.TokenVersion++
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user role updated",
		zap.String("userID", id.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("active", user.IsActive),
	)
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

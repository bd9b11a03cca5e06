package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperror"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, userAgent, ip string) (*response.AuthResponse, error)
	Logout(ctx context.Context, session *utils.Session) error

	// Authenticate resolves a bearer token into the caller's session.
	Authenticate(ctx context.Context, token string) (*utils.Session, error)
	// EnsureAdmin creates or promotes the administrator account.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	clock  utils.Clock
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	clock utils.Clock,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		clock:  clock,
		log:    log.With(zap.String("service", "auth")),
	}
}

var errInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid credentials")

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(errs)
	}

	// 2. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	now := s.clock.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}

	// 3. Save user, the unique index decides duplicates
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.Conflict("email %s is already registered", user.Email)
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, userAgent, ip string) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", req.Email))
		return nil, errInvalidCredentials
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, apperror.New(apperror.KindForbidden, "account is deactivated")
	}

	now := s.clock.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		UserAgent: optional(userAgent),
		IPAddress: optional(ip),
		ExpiresAt: now.Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour),
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := utils.NewSessionToken(s.config.JWT.Secret, session.ID, user.ID, string(user.Role), now, session.ExpiresAt)
	if err != nil {
		s.log.Error("Failed to sign session token", zap.Error(err))
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", session.ID.String()))

	resp := response.AuthToResponse(user, token, session.ExpiresAt)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, session *utils.Session) error {
	if session == nil {
		return apperror.ErrUnauthorized
	}

	if err := s.repo.Session.Revoke(ctx, session.ID, s.clock.Now()); err != nil {
		s.log.Warn("Failed to revoke session", zap.Error(err), zap.String("session_id", session.ID.String()))
		return apperror.New(apperror.KindUnauthorized, "session already ended")
	}

	s.log.Info("User logged out", zap.String("session_id", session.ID.String()))
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*utils.Session, error) {
	claims, err := utils.ParseSessionToken(s.config.JWT.Secret, token, s.clock.Now())
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "invalid or expired token")
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "invalid or expired token")
	}

	session, err := s.repo.Session.FindValidSession(ctx, sessionID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, apperror.New(apperror.KindUnauthorized, "session expired or revoked")
	}

	user, err := s.repo.User.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperror.New(apperror.KindUnauthorized, "account not available")
	}

	return &utils.Session{
		ID:     session.ID,
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
	}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}

	now := s.clock.Now()
	if user != nil {
		if user.Role == entity.RoleAdmin && user.IsActive {
			return nil
		}
		user.Role = entity.RoleAdmin
		user.IsActive = true
		user.UpdatedAt = now
		if err := s.repo.User.Update(ctx, user); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		s.log.Info("User promoted to admin", zap.String("email", email))
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user = &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.log.Info("Admin account created", zap.String("email", email))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

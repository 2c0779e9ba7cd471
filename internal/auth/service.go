package auth

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/repository"
)

// RegisterInput is the payload for creating a broker account.
type RegisterInput struct {
	FullName    string `json:"fullName" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

// TokenPair is what a successful register/login returns.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements account registration and session issuance.
type Service struct {
	users  repository.UserRepository
	tokens *TokenManager
	logger *slog.Logger
}

// NewService creates the auth service.
func NewService(users repository.UserRepository, tokens *TokenManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates a broker account and returns its tokens.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	exists, err := s.users.ExistsByEmailOrPhone(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if exists {
		return nil, TokenPair{}, common.NewAppError("DUPLICATE", "email or phone already registered", common.ErrInvalidInput)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, common.NewAppError("HASH_ERROR", "failed to hash password", err)
	}

	u := &entity.User{
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         constants.RoleBroker,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issue(u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Info("user registered", "user_id", u.ID.Hex(), "email", u.Email)
	return u, pair, nil
}

// Login verifies credentials and returns fresh tokens. Inactive accounts
// and bad passwords both fail with the same unauthorized error.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, TokenPair{}, common.NewAppError("BAD_CREDENTIALS", "invalid email or password", common.ErrUnauthorized)
		}
		return nil, TokenPair{}, err
	}
	if !u.IsActive {
		return nil, TokenPair{}, common.NewAppError("INACTIVE", "account is inactive", common.ErrUnauthorized)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, common.NewAppError("BAD_CREDENTIALS", "invalid email or password", common.ErrUnauthorized)
	}

	pair, err := s.issue(u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Info("user logged in", "user_id", u.ID.Hex())
	return u, pair, nil
}

// Refresh validates a refresh token and returns a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return "", common.NewAppError("BAD_TOKEN", "invalid token subject", common.ErrUnauthorized)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil || !u.IsActive {
		return "", common.NewAppError("BAD_TOKEN", "invalid refresh token", common.ErrUnauthorized)
	}
	return s.tokens.Generate(u.ID.Hex(), u.Email, u.Role)
}

// Profile loads the account behind a verified token subject.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	return s.users.GetByID(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin account if it does not exist.
// Run at startup and by the create-admin CLI command.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return common.NewAppError("HASH_ERROR", "failed to hash admin password", err)
	}
	u := &entity.User{
		FullName:     "Admin",
		PhoneNumber:  "0000000000",
		Email:        email,
		PasswordHash: hash,
		Role:         constants.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	s.logger.Info("admin account created", "email", email)
	return nil
}

func (s *Service) issue(u *entity.User) (TokenPair, error) {
	token, err := s.tokens.Generate(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return TokenPair{}, common.NewAppError("TOKEN_ERROR", "failed to sign token", err)
	}
	refresh, err := s.tokens.GenerateRefresh(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return TokenPair{}, common.NewAppError("TOKEN_ERROR", "failed to sign refresh token", err)
	}
	return TokenPair{Token: token, RefreshToken: refresh}, nil
}

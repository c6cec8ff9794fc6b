package application

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService struct {
	users  domain.UserRepository
	hasher domain.PasswordHasher
	tokens domain.TokenIssuer
	logger *zap.Logger
}

func NewAuthService(
	users domain.UserRepository,
	hasher domain.PasswordHasher,
	tokens domain.TokenIssuer,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return AuthResult{}, domain.ErrMissingFields
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return AuthResult{}, domain.ErrPasswordTooShort
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return AuthResult{}, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.NewUser(name, email, hash)
	if err := s.users.Insert(ctx, user); err != nil {
		return AuthResult{}, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, domain.ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return AuthResult{}, domain.ErrUserNotFound
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return AuthResult{}, err
	}
	return s.issue(user)
}

// Authenticate turns a bearer token into the caller it was issued to.
func (s *AuthService) Authenticate(token string) (domain.Principal, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) issue(user *domain.User) (AuthResult, error) {
	token, err := s.tokens.Issue(domain.Principal{
		UserID:   user.ID,
		PublicID: user.PublicID,
		Email:    user.Email,
	})
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Package auth регистрирует пользователей и выпускает токены доступа.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MinPasswordLength: минимальная длина пароля при регистрации.
const MinPasswordLength = 8

// Service: регистрация, вход и профиль.
type Service struct {
	users      domain.UserRepository
	tokens     *Tokens
	bcryptCost int
	logger     *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithBcryptCost задаёт стоимость bcrypt; в тестах используется bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService создаёт сервис авторизации.
func NewService(users domain.UserRepository, tokens *Tokens, logger *log.Entry, opts ...Option) *Service {
	if logger == nil {
		logger = log.WithField("component", "auth")
	}
	s := &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session: пользователь и его токен.
type Session struct {
	User  domain.User
	Token string
}

// Register создаёт пользователя и сразу выдаёт токен.
func (s *Service) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	verr := &domain.ValidationError{}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.Add("email", "must be a valid email")
	}
	if len(password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if name == "" {
		verr.Add("name", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{Email: email, Name: name, PasswordHash: string(hash)})
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return Session{User: user, Token: token}, nil
}

// Login проверяет пароль; неизвестный email и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}

// Me возвращает профиль пользователя.
func (s *Service) Me(ctx context.Context, userID int64) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Authenticate проверяет токен и возвращает id пользователя.
func (s *Service) Authenticate(token string) (int64, error) {
	return s.tokens.Verify(token)
}

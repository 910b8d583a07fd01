package services

import (
	"fmt"
	"time"

	"chat-shell/auth"
	"chat-shell/domain"
	"chat-shell/errors"
	"chat-shell/repositories"
)

type IAuthService interface {
	Register(username, password string) (domain.UserIdentity, Token, error)
	Login(username, password string) (domain.UserIdentity, Token, error)
}

type Token string

type AuthService struct {
	users         repositories.IUserRepository
	tokenDuration time.Duration
}

func NewAuthService(users repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{users: users, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(username, password string) (domain.UserIdentity, Token, error) {
	req := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(req); err != nil {
		return domain.UserIdentity{}, "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hash in the service layer so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.UserIdentity{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.users.CreateUser(username, hashedPassword)
	if err != nil {
		return domain.UserIdentity{}, "", err // propagates ErrUserAlreadyExists
	}

	token, err := auth.GenerateToken(userID, username, s.tokenDuration)
	if err != nil {
		return domain.UserIdentity{}, "", errors.ErrTokenGeneration
	}

	identity := domain.UserIdentity{ID: userID, Username: username, DisplayName: username}
	return identity, Token(token), nil
}

func (s *AuthService) Login(username, password string) (domain.UserIdentity, Token, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent account enumeration.
		return domain.UserIdentity{}, "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.UserIdentity{}, "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.tokenDuration)
	if err != nil {
		return domain.UserIdentity{}, "", errors.ErrTokenGeneration
	}

	identity := domain.UserIdentity{ID: user.ID, Username: user.Username, DisplayName: user.Username}
	return identity, Token(token), nil
}

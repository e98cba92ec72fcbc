package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameTaken      = errors.New("username already exists")
)

type Service struct {
	repo      Repository
	jwtSecret string
	jwtExpire time.Duration
}

func NewService(repo Repository, secret string, expire time.Duration) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: secret,
		jwtExpire: expire,
	}
}

// Register creates a new account and returns it alongside a freshly minted token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserModel, string, error) {
	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, "", ErrUsernameTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &UserModel{
		Username: req.Username,
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.MintToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies the secret and returns the account with a bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*UserModel, string, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.MintToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// MintToken signs a bearer token carrying the user identity.
func (s *Service) MintToken(user *UserModel) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpire).Unix(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyToken validates a bearer token and yields the identity it carries.
func (s *Service) VerifyToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:   uint(userID),
		Username: username,
	}, nil
}

// People lists every registered account as (id, username) pairs.
func (s *Service) People(ctx context.Context) ([]PersonResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	people := make([]PersonResponse, 0, len(users))
	for _, u := range users {
		people = append(people, PersonResponse{ID: u.ID, Username: u.Username})
	}
	return people, nil
}

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

const minPasswordLen = 6

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) bool
}

type TokenIssuer interface {
	Issue(r domain.Requester) (token string, expires time.Time, err error)
}

type Registration struct {
	Name     string
	TelNo    string
	Email    string
	Password string
}

type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(u domain.UserRepository, h PasswordHasher, t TokenIssuer) *AuthService {
	return &AuthService{users: u, hasher: h, tokens: t}
}

// Register creates a regular user and signs them in. Admin accounts are only
// created through CreateUser.
func (s *AuthService) Register(ctx context.Context, in Registration) (Session, error) {
	u, err := s.CreateUser(ctx, in, domain.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *AuthService) CreateUser(ctx context.Context, in Registration, role domain.Role) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Name == "":
		return domain.User{}, domain.Invalid("name", "Please add a name")
	case in.Email == "":
		return domain.User{}, domain.Invalid("email", "Please add an email")
	case !domain.ValidEmail(in.Email):
		return domain.User{}, domain.Invalid("email", "Please add a valid email")
	case len(in.Password) < minPasswordLen:
		return domain.User{}, domain.Invalid("password", "Password must be at least %d characters", minPasswordLen)
	case !role.Valid():
		return domain.User{}, domain.Invalid("role", "Role must be user or admin")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.CreateUser(ctx, domain.User{
		Name:         in.Name,
		TelNo:        strings.TrimSpace(in.TelNo),
		Email:        in.Email,
		Role:         role,
		PasswordHash: hash,
	})
	if errors.Is(err, domain.ErrDuplicateKey) {
		return domain.User{}, domain.Duplicate("email", "This email has already taken")
	}
	return u, err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, domain.Invalid("credentials", "Please provide an email and password")
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return Session{}, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return Session{}, domain.Unauthenticated("Invalid credentials")
	}
	return s.session(u)
}

func (s *AuthService) Me(ctx context.Context, r domain.Requester) (domain.User, error) {
	u, err := s.users.GetUser(ctx, r.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.NotFound("No user with the id of %d", r.ID)
	}
	return u, err
}

func (s *AuthService) session(u domain.User) (Session, error) {
	tok, exp, err := s.tokens.Issue(domain.Requester{ID: u.ID, Role: u.Role})
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok, ExpiresAt: exp}, nil
}

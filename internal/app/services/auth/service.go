package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/dto"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionExpired     = errors.New("auth: session expired")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
)

// PasswordHasher hides the hashing scheme from the service.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenGenerator mints opaque session tokens.
type TokenGenerator interface {
	NewToken() (domainauth.Token, error)
}

type Service struct {
	UoWFactory uow.UoWFactory
	Sessions   domainauth.SessionStore
	Hasher     PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*dto.User, error) {
	if len(params.Password) < 8 {
		return nil, ErrWeakPassword
	}
	hash, err := s.Hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	email := domainuser.NormalizeEmail(params.Email)
	if existing, err := unit.Users().ByEmail(ctx, email); err == nil && existing != nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}

	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         params.Name,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, user); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	out := dto.MapUser(user)
	return &out, nil
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      dto.User  `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	lookupCtx := uow.ContextWithUnitOfWork(ctx, unit)

	user, err := unit.Users().ByEmail(lookupCtx, domainuser.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  token,
		UserID: user.ID,
		TTL:    s.SessionTTL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     string(session.Token),
		ExpiresAt: session.ExpiresAt,
		User:      dto.MapUser(user),
	}, nil
}

func (s *Service) Logout(ctx context.Context, token domainauth.Token) error {
	return s.Sessions.Delete(ctx, token)
}

// ResolveToken maps a bearer token to the user it authenticates. Expired
// sessions are deleted on sight.
func (s *Service) ResolveToken(ctx context.Context, token domainauth.Token) (*dto.User, error) {
	session, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		_ = s.Sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	user, err := unit.Users().ByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	out := dto.MapUser(user)
	return &out, nil
}

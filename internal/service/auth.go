package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/guard"
	"github.com/warcamp/platform/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles player registration and login.
type AuthService struct {
	store   Store
	jwtMgr  *auth.JWTManager
	lockout *guard.Lockout
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store Store, jwtMgr *auth.JWTManager, lockout *guard.Lockout, logger *slog.Logger) *AuthService {
	return &AuthService{store: store, jwtMgr: jwtMgr, lockout: lockout, logger: logger}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Session is returned on successful registration or login.
type Session struct {
	Token  string         `json:"-"`
	Player *domain.Player `json:"player"`
}

// Register creates a new player account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Login = strings.TrimSpace(input.Login)
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if err := domain.ValidateLogin(input.Login); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if input.Email != "" {
		if err := domain.ValidateEmail(input.Email); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}
	if input.Name == "" {
		input.Name = input.Login
	}

	existing, err := s.store.Repos.Players.FindByLogin(ctx, s.store.DB, input.Login)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("login already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	player := &domain.Player{
		ID:           uuid.New(),
		Login:        input.Login,
		PasswordHash: string(hash),
		Name:         input.Name,
		Email:        input.Email,
		IsActive:     true,
	}
	err = s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Players.Create(ctx, tx, player); err != nil {
			return err
		}
		return emit(ctx, s.store, tx, domain.NewPlayerRegisteredEvent(player))
	})
	if err != nil {
		return nil, internalErr("create player", err)
	}

	s.logger.Info("player registered", "player_id", player.ID, "login", player.Login)
	return s.open(player)
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login authenticates a player. Repeated failures lock the login for a while.
func (s *AuthService) Login(ctx context.Context, input LoginInput, ip string) (*Session, error) {
	login := strings.TrimSpace(input.Login)
	if login == "" || input.Password == "" {
		return nil, domain.ErrValidation("login and password are required")
	}

	if err := s.lockout.CheckLocked(ctx, s.store.DB, login); err != nil {
		return nil, err
	}

	player, err := s.store.Repos.Players.FindByLogin(ctx, s.store.DB, login)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil || bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(input.Password)) != nil {
		s.lockout.Record(ctx, s.store.DB, login, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if !player.IsActive {
		return nil, domain.ErrForbidden("account is deactivated")
	}

	s.lockout.Record(ctx, s.store.DB, login, ip, true)
	return s.open(player)
}

func (s *AuthService) open(player *domain.Player) (*Session, error) {
	token, err := s.jwtMgr.GenerateToken(player.ID, player.Login)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &Session{Token: token, Player: player}, nil
}

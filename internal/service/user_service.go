package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/matchday-pool/internal/logger"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
	"github.com/AdamBeresnev/matchday-pool/internal/utils"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"
)

const guestProvider = "guest"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	_, err := s.store.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Name,
		PasswordHash: utils.Ptr(string(hash)),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks an email and password pair. Unknown emails and accounts without a
// password get the same error as a wrong password.
func (s *UserService) Authenticate(ctx context.Context, req LoginRequest) (*users.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != gothUser.NickName {
			user.AvatarURL = utils.Ptr(gothUser.AvatarURL)
			if gothUser.NickName != "" {
				user.Username = gothUser.NickName
			}
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				logger.FromContext(ctx).Warn("failed to refresh user profile", "user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		name := gothUser.Name
		if name == "" {
			name = gothUser.NickName
		}
		// Emails are unique, providers that hide them get a placeholder.
		email := normalizeEmail(gothUser.Email)
		if email == "" {
			email = gothUser.UserID + "@" + gothUser.Provider + ".invalid"
		}
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      email,
			Username:   name,
			Provider:   utils.Ptr(gothUser.Provider),
			ProviderID: utils.Ptr(gothUser.UserID),
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			if isUniqueViolation(err) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		return newUser, nil
	}

	return nil, err
}

// CreateGuestUser gives every guest session its own throwaway account, so guests never
// share predictions.
func (s *UserService) CreateGuestUser(ctx context.Context) (*users.User, error) {
	id := uuid.New()
	guest := &users.User{
		ID:         id,
		Email:      id.String() + "@" + guestProvider + ".invalid",
		Username:   "Guest " + strings.ToUpper(id.String()[:6]),
		Provider:   utils.Ptr(guestProvider),
		ProviderID: utils.Ptr(id.String()),
	}
	if err := s.store.CreateUser(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	return guest, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
	"github.com/Skotchmaster/zefir_shop/pkg/hash"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
	"github.com/Skotchmaster/zefir_shop/pkg/tokens"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid token"
)

var phonePattern = regexp.MustCompile(`^((8|\+7)[\- ]?)?(\(?\d{3}\)?[\- ]?)?[\d\- ]{7,10}$`)

type AccountService struct {
	Repo        *repo.GormRepo
	Events      events.Publisher
	JWTSecret   []byte
	AccessTTL   time.Duration
	DefaultRole string
}

type RegisterInput struct {
	Name            string
	Surname         string
	Phone           string
	Email           string
	Password        string
	PasswordConfirm string
}

type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
}

func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *AccountService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No user with such id")
	}
	return u, err
}

func (s *AccountService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No user with such email")
	}
	return u, err
}

// Register validates everything before reporting, so one response can carry
// several problems. Nothing is written unless all checks pass.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.register")

	var errs apperr.Collector
	errs.Check(strings.TrimSpace(in.Name) != "", "", "Name can't be null or empty")
	errs.Check(strings.TrimSpace(in.Surname) != "", "", "Surname can't be null or empty")
	errs.Check(strings.TrimSpace(in.Email) != "", "", "Email can't be null or empty")
	errs.Check(phonePattern.MatchString(in.Phone), "", "Invalid phone number")
	errs.Check(in.Password != "", "", "Password can't be null or empty")
	errs.Check(in.Password == in.PasswordConfirm, "", "Password is not confirmed")

	if in.Email != "" {
		taken, err := s.Repo.EmailTaken(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		errs.Check(!taken, "", "User already exists")
	}
	if err := errs.Err(); err != nil {
		l.Warn("register_error", "status", 400, "reason", "validation", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	refresh, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	refreshHash := tokens.Sha256Hex(refresh)

	user := &models.User{
		Name:             in.Name,
		Surname:          in.Surname,
		Phone:            in.Phone,
		Email:            in.Email,
		HashedPassword:   pwHash,
		RoleName:         s.defaultRole(),
		RefreshTokenHash: &refreshHash,
	}
	if err := s.Repo.CreateUserWithBasket(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	access, exp, err := s.issueAccess(user)
	if err != nil {
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "role", user.RoleName)
	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), events.UserEvent{
		Type:   events.UserRegistered,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.RoleName,
		At:     time.Now().UTC(),
	})

	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh, AccessExp: exp}, nil
}

// Login answers unknown email and wrong password identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_error", "status", 401, "reason", "unknown email")
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(user.HashedPassword, password) {
		l.Warn("login_error", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	return s.rotate(ctx, user)
}

// DeleteByCredentials reports false, without error, when the credentials do
// not match an account.
func (s *AccountService) DeleteByCredentials(ctx context.Context, email, password string) (bool, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(user.HashedPassword, password) {
		return false, nil
	}
	if err := s.deleteUser(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AccountService) DeleteByID(ctx context.Context, id uint) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteUser(ctx, user)
}

// Refresh trusts the identity taken from an access token whose signature was
// checked but whose expiry was not, and swaps both tokens when the presented
// refresh token matches the stored one.
func (s *AccountService) Refresh(ctx context.Context, id Identity, refreshToken string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.refresh", "user_id", id.UserID)

	user, err := s.Repo.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_error", "status", 401, "reason", "unknown user")
			return nil, apperr.Unauthorized(msgInvalidToken)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if refreshToken == "" || user.RefreshTokenHash == nil || *user.RefreshTokenHash != tokens.Sha256Hex(refreshToken) {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token mismatch")
		return nil, apperr.Unauthorized(msgInvalidToken)
	}

	return s.rotate(ctx, user)
}

// Revoke clears the stored refresh token. It reports false when the account
// no longer exists.
func (s *AccountService) Revoke(ctx context.Context, id Identity) (bool, error) {
	if err := s.Repo.SetRefreshHash(ctx, id.UserID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("clear refresh token: %w", err)
	}
	return true, nil
}

func (s *AccountService) rotate(ctx context.Context, user *models.User) (*AuthResult, error) {
	refresh, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	refreshHash := tokens.Sha256Hex(refresh)
	if err := s.Repo.SetRefreshHash(ctx, user.ID, &refreshHash); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	user.RefreshTokenHash = &refreshHash

	access, exp, err := s.issueAccess(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh, AccessExp: exp}, nil
}

func (s *AccountService) issueAccess(user *models.User) (string, time.Time, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	exp := time.Now().Add(ttl)
	access, err := tokens.CreateAccessToken(s.JWTSecret, user.ID, user.Email, user.RoleName, exp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return access, exp, nil
}

func (s *AccountService) deleteUser(ctx context.Context, user *models.User) error {
	if err := s.Repo.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("No user with such id")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	logging.FromContext(ctx).Info("user_deleted", "svc", "account.delete", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), events.UserEvent{
		Type:   events.UserDeleted,
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	return nil
}

func (s *AccountService) defaultRole() string {
	if s.DefaultRole == "" {
		return models.RoleUser
	}
	return s.DefaultRole
}

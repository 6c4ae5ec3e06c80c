package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

// Account field limits.
const (
	MinPasswordLen = 8
	MaxNicknameLen = 50
	MaxEmailLen    = 254
)

// TOTPIssuer is the issuer name shown in authenticator apps.
const TOTPIssuer = "ReviewBlog"

// TOTPEnrolment carries what a user needs to add the account to an
// authenticator app.
type TOTPEnrolment struct {
	Secret string
	URL    string
	QRCode []byte // PNG
}

// UserService handles signup, credential checks and two-factor enrolment.
type UserService struct {
	users    store.UserRepository
	hashCost int
}

func NewUserService(users store.UserRepository) *UserService {
	return &UserService{users: users, hashCost: bcrypt.DefaultCost}
}

// Signup registers a new account. Email and nickname must both be unused.
func (s *UserService) Signup(ctx context.Context, email, nickname, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	nickname = strings.TrimSpace(nickname)

	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("a valid email is required: %w", ErrInvalidInput)
	case utf8.RuneCountInString(email) > MaxEmailLen:
		return nil, fmt.Errorf("email too long: %w", ErrInvalidInput)
	case nickname == "":
		return nil, fmt.Errorf("nickname is required: %w", ErrInvalidInput)
	case utf8.RuneCountInString(nickname) > MaxNicknameLen:
		return nil, fmt.Errorf("nickname longer than %d characters: %w", MaxNicknameLen, ErrInvalidInput)
	case len(password) < MinPasswordLen:
		return nil, fmt.Errorf("password shorter than %d characters: %w", MinPasswordLen, ErrInvalidInput)
	}

	if u, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	} else if u != nil {
		return nil, fmt.Errorf("email %q: %w", email, ErrDuplicateName)
	}
	if u, err := s.users.FindByNickname(ctx, nickname); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	} else if u != nil {
		return nil, fmt.Errorf("nickname %q: %w", nickname, ErrDuplicateName)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("account: %w", ErrDuplicateName)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Authenticate checks an email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}

func (s *UserService) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	u, err := s.users.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", nickname, ErrNotFound)
	}
	return u, nil
}

// BeginTOTP generates and stores a fresh secret. 2FA stays disabled until
// EnableTOTP confirms a code from it.
func (s *UserService) BeginTOTP(ctx context.Context, userID int64) (*TOTPEnrolment, error) {
	u, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: u.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp: %w", err)
	}
	if err := s.users.SetTOTPSecret(ctx, u.ID, key.Secret()); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}
	return enrolment(key.URL(), key.Secret())
}

// PendingTOTP rebuilds the enrolment for a secret that is not yet enabled,
// so a failed confirmation can show the same QR code again.
func (s *UserService) PendingTOTP(u *models.User) (*TOTPEnrolment, error) {
	if u.TOTPSecret == nil {
		return nil, fmt.Errorf("no pending secret: %w", ErrNotFound)
	}
	v := url.Values{}
	v.Set("secret", *u.TOTPSecret)
	v.Set("issuer", TOTPIssuer)
	otpURL := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + TOTPIssuer + ":" + u.Email,
		RawQuery: v.Encode(),
	}
	return enrolment(otpURL.String(), *u.TOTPSecret)
}

func enrolment(keyURL, secret string) (*TOTPEnrolment, error) {
	png, err := qrcode.Encode(keyURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return &TOTPEnrolment{Secret: secret, URL: keyURL, QRCode: png}, nil
}

// EnableTOTP turns on 2FA once code validates against the pending secret.
func (s *UserService) EnableTOTP(ctx context.Context, userID int64, code string) error {
	u, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.VerifyTOTP(u, code) {
		return ErrInvalidCredentials
	}
	if err := s.users.EnableTOTP(ctx, u.ID); err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// VerifyTOTP reports whether code is valid for the user's secret.
func (s *UserService) VerifyTOTP(u *models.User, code string) bool {
	if u.TOTPSecret == nil {
		return false
	}
	return totp.Validate(strings.TrimSpace(code), *u.TOTPSecret)
}

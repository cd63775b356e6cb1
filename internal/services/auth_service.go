package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminSubject is the token subject issued to the dashboard operator.
const AdminSubject = "admin"

type TokenSigner func(subject string, ttl time.Duration) (string, error)

// AuthService guards the dashboard. The deployment holds a single bcrypt
// password hash; no user table exists, so respondents stay anonymous.
type AuthService struct {
	passHash  []byte
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token     string
	ExpiresIn time.Duration
}

func NewAuthService(passwordHash string, signer TokenSigner, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		passHash:  []byte(strings.TrimSpace(passwordHash)),
		signToken: signer,
		tokenTTL:  ttl,
	}
}

// Enabled reports whether an admin password has been configured. When it is
// not, the dashboard routes are served without a token.
func (s *AuthService) Enabled() bool {
	return s != nil && len(s.passHash) > 0
}

func (s *AuthService) Login(password string) (*AuthResult, error) {
	if !s.Enabled() {
		return nil, NewInvalidError("admin login is not configured")
	}
	if strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("password required")
	}
	if err := bcrypt.CompareHashAndPassword(s.passHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(AdminSubject, s.tokenTTL)
	if err != nil {
		return nil, NewInternalError("sign token", err)
	}
	return &AuthResult{Token: token, ExpiresIn: s.tokenTTL}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// HashPassword produces the value stored in auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", NewInvalidError("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

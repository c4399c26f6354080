// Package auth validates credentials before they leave the client and
// drives the login, signup and password-reset exchanges. A validation
// failure never reaches the network.
package auth

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"pado/internal/api"
)

// Authenticator is the slice of the remote client the auth flows need.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (api.AuthResult, error)
	Signup(ctx context.Context, username, name, security, password string) (api.AuthResult, error)
	ResetPassword(ctx context.Context, username, security, newPassword string) (api.AuthResult, error)
}

// PasswordMissing lists which character classes a password lacks, in
// the order the requirements are announced: a number, an uppercase
// letter, a lowercase letter.
func PasswordMissing(pwd string) []string {
	hasDigit, hasUpper, hasLower := false, false, false
	for _, r := range pwd {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	var missing []string
	if !hasDigit {
		missing = append(missing, "a number")
	}
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	return missing
}

// ValidatePassword enforces the complexity rules and enumerates every
// missing requirement in one message.
func ValidatePassword(pwd string) error {
	if missing := PasswordMissing(pwd); len(missing) > 0 {
		return fmt.Errorf("Password must include %s.", strings.Join(missing, ", "))
	}
	return nil
}

// Service runs the auth flows with client-side validation in front.
type Service struct {
	client Authenticator
}

func NewService(client Authenticator) *Service {
	return &Service{client: client}
}

// Login submits credentials as-is; complexity rules apply only when a
// password is being set.
func (s *Service) Login(ctx context.Context, username, password string) (api.AuthResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return api.AuthResult{}, fmt.Errorf("Please fill all fields (username, password).")
	}
	return s.client.Login(ctx, username, password)
}

// Signup checks required fields and password complexity, then submits.
func (s *Service) Signup(ctx context.Context, username, name, security, password string) (api.AuthResult, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(name) == "" ||
		strings.TrimSpace(security) == "" || password == "" {
		return api.AuthResult{}, fmt.Errorf("Please fill all fields (username, name, security, password).")
	}
	if err := ValidatePassword(password); err != nil {
		return api.AuthResult{}, err
	}
	return s.client.Signup(ctx, username, name, security, password)
}

// ResetPassword validates the replacement password before the
// security-answer exchange.
func (s *Service) ResetPassword(ctx context.Context, username, security, newPassword string) (api.AuthResult, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(security) == "" || newPassword == "" {
		return api.AuthResult{}, fmt.Errorf("Please fill all fields (username, security, new password).")
	}
	if missing := PasswordMissing(newPassword); len(missing) > 0 {
		return api.AuthResult{}, fmt.Errorf("New password must include %s.", strings.Join(missing, ", "))
	}
	return s.client.ResetPassword(ctx, username, security, newPassword)
}

// Package auth signs administrators in.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/pharma_ruche/pkg/hash"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
	"github.com/Skotchmaster/pharma_ruche/pkg/tokens"
)

var ErrUnauthorized = errors.New("invalid credentials")

type Service struct {
	// Accounts maps lower-case email to bcrypt hash.
	Accounts map[string]string
	// AllowList restricts admin access to these emails. Empty allows every
	// account.
	AllowList map[string]struct{}
	JWTSecret []byte
	AccessTTL time.Duration
}

func NewService(accounts map[string]string, allow []string, secret []byte, ttl time.Duration) *Service {
	list := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		list[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	return &Service{Accounts: accounts, AllowList: list, JWTSecret: secret, AccessTTL: ttl}
}

// SignIn returns an admin access token and its expiry.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, time.Time, error) {
	l := logging.FromContext(ctx).With("component", "auth")
	email = strings.ToLower(strings.TrimSpace(email))

	h, ok := s.Accounts[email]
	if !ok || !hash.CheckPassword(h, password) {
		l.Warn("sign_in_failed", "reason", "bad credentials")
		return "", time.Time{}, ErrUnauthorized
	}
	if len(s.AllowList) > 0 {
		if _, ok := s.AllowList[email]; !ok {
			l.Warn("sign_in_failed", "reason", "not on allow list")
			return "", time.Time{}, ErrUnauthorized
		}
	}

	exp := time.Now().Add(s.AccessTTL)
	tok, err := tokens.SignAccessToken(email, tokens.RoleAdmin, s.JWTSecret, s.AccessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	l.Info("sign_in_success", "email", email)
	return tok, exp, nil
}

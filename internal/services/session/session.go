// Package session keeps the upstream auth token and the signed-in admin per
// browser session. The cookie only ever carries the session ID; the token
// lives server side so it never reaches the client.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"catalog_admin/internal/domain/models"
	"catalog_admin/internal/lib/logger/sl"
)

// MsgExpired is surfaced when a request hits the panel with a token the
// upstream no longer accepts.
const MsgExpired = "Session is expired"

var ErrNotFound = errors.New("session: not found")

// Session is the per-admin state persisted in the store.
type Session struct {
	Token    string      `json:"token"`
	User     models.User `json:"user"`
	IssuedAt time.Time   `json:"issued_at"`
}

// Store persists sessions keyed by session ID.
type Store interface {
	Save(ctx context.Context, sid string, s Session, ttl time.Duration) error
	Get(ctx context.Context, sid string) (Session, error)
	Delete(ctx context.Context, sid string) error
}

type Service struct {
	log   *slog.Logger
	store Store
	ttl   time.Duration
}

func NewService(log *slog.Logger, store Store, ttl time.Duration) *Service {
	return &Service{log: log, store: store, ttl: ttl}
}

// Begin installs a fresh session after a successful upstream login.
func (s *Service) Begin(ctx context.Context, sid, token string, user models.User) error {
	const op = "session.Begin"

	sess := Session{Token: token, User: user, IssuedAt: time.Now().UTC()}
	if err := s.store.Save(ctx, sid, sess, s.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("session started", slog.String("user_id", user.ID))

	return nil
}

// Current returns the live session, or ErrNotFound when there is none or the
// stored token has already expired. An expired session is deleted on read.
func (s *Service) Current(ctx context.Context, sid string) (Session, error) {
	const op = "session.Current"

	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if TokenExpired(sess.Token) {
		if err := s.store.Delete(ctx, sid); err != nil {
			s.log.Warn("failed to drop expired session", sl.Err(err))
		}
		return Session{}, ErrNotFound
	}

	return sess, nil
}

// End removes the session, e.g. on logout or after an upstream 401.
func (s *Service) End(ctx context.Context, sid string) error {
	const op = "session.End"

	if err := s.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// TokenExpired inspects the token's exp claim without verifying the
// signature; verification is the upstream's job, the panel only needs to
// know whether sending the token is pointless. Unparseable tokens count as
// expired.
func TokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return exp.Before(time.Now())
}

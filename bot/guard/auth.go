package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/lib/sl"
)

// TokenChecker asks the payments API whether a token is still accepted.
type TokenChecker interface {
	CheckToken(ctx context.Context, token string) (bool, error)
}

// AuthGuard requires a live, unexpired access token. A successful live check
// is trusted for checkTTL.
type AuthGuard struct {
	sessions *chat.Sessions
	checker  TokenChecker
	checkTTL time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewAuthGuard(sessions *chat.Sessions, checker TokenChecker, checkTTL time.Duration, log *slog.Logger) *AuthGuard {
	return &AuthGuard{
		sessions: sessions,
		checker:  checker,
		checkTTL: checkTTL,
		now:      time.Now,
		log:      log.With(sl.Module("guard.auth")),
	}
}

func (g *AuthGuard) SetClock(now func() time.Time) {
	g.now = now
}

func (g *AuthGuard) Name() string { return "auth" }

func (g *AuthGuard) Check(ctx context.Context, sess *chat.Session, t Target) *Denied {
	if !t.RequiresAuth {
		return nil
	}
	now := g.now()
	auth := sess.Auth
	if auth == nil {
		return deny("You are not logged in.")
	}
	if !auth.Valid(now) {
		g.clear(ctx, sess)
		return deny("Your session has expired.")
	}
	if g.checkTTL > 0 && now.Sub(auth.CheckedAt) < g.checkTTL {
		return nil
	}

	valid, err := g.checker.CheckToken(ctx, auth.AccessToken)
	if err != nil && !errors.Is(err, entity.ErrUnauthorized) {
		g.log.Warn("token check failed",
			slog.String("user_id", sess.UserID),
			sl.Secret("token", auth.AccessToken),
			sl.Err(err),
		)
		return &Denied{
			Guard:  g.Name(),
			Reason: "token check unavailable",
			Reply:  present.Unavailable("Could not verify your session right now. Please try again in a moment."),
		}
	}
	if err != nil || !valid {
		g.clear(ctx, sess)
		return deny("Your session is no longer valid.")
	}

	err = g.sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		if s.Auth != nil && s.Auth.AccessToken == auth.AccessToken {
			s.Auth.CheckedAt = now
		}
		return nil
	})
	if err != nil {
		g.log.Error("saving token check", slog.String("user_id", sess.UserID), sl.Err(err))
	}
	return nil
}

// clear drops the auth block and keeps everything else, including the flow.
func (g *AuthGuard) clear(ctx context.Context, sess *chat.Session) {
	err := g.sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		s.Auth = nil
		s.Kyc = nil
		return nil
	})
	if err != nil {
		g.log.Error("clearing auth", slog.String("user_id", sess.UserID), sl.Err(err))
		sess.Auth = nil
		return
	}
	g.log.Info("auth cleared", slog.String("user_id", sess.UserID))
}

func deny(reason string) *Denied {
	return &Denied{
		Guard:  "auth",
		Reason: reason,
		Remedy: chat.ActionLogin,
		Reply:  present.LoginRequired(reason),
	}
}

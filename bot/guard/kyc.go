package guard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/lib/sl"
)

type KycAPI interface {
	KycStatus(ctx context.Context, token, email string) (*entity.KycInfo, error)
}

// KycGuard requires a verified KYC status for every feature not on the
// exempt list. Statuses are cached on the session for ttl. When the status
// cannot be fetched the guard allows the event.
type KycGuard struct {
	sessions *chat.Sessions
	api      KycAPI
	ttl      time.Duration
	exempt   map[string]bool
	now      func() time.Time
	log      *slog.Logger
}

func NewKycGuard(sessions *chat.Sessions, api KycAPI, ttl time.Duration, exempt []string, log *slog.Logger) *KycGuard {
	g := &KycGuard{
		sessions: sessions,
		api:      api,
		ttl:      ttl,
		exempt:   make(map[string]bool, len(exempt)),
		now:      time.Now,
		log:      log.With(sl.Module("guard.kyc")),
	}
	for _, f := range exempt {
		if f = strings.TrimSpace(f); f != "" {
			g.exempt[f] = true
		}
	}
	return g
}

// ParseFeatures splits a comma separated feature list.
func ParseFeatures(list string) []string {
	var out []string
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (g *KycGuard) SetClock(now func() time.Time) {
	g.now = now
}

func (g *KycGuard) Name() string { return "kyc" }

func (g *KycGuard) Exempt(feature string) bool {
	return g.exempt[feature]
}

func (g *KycGuard) Check(ctx context.Context, sess *chat.Session, t Target) *Denied {
	if g.exempt[t.Feature] {
		return nil
	}
	now := g.now()
	if sess.ActiveAuth(now) == nil {
		// nothing to check the status with; auth is the auth guard's job
		return nil
	}

	var status entity.KycStatus
	if sess.Kyc.Fresh(now, g.ttl) {
		status = sess.Kyc.Status
	} else {
		info, err := g.Refresh(ctx, sess)
		if err != nil {
			g.log.Warn("kyc status unavailable, allowing",
				slog.String("user_id", sess.UserID),
				slog.String("feature", t.Feature),
				sl.Err(err),
			)
			return nil
		}
		status = info.Status
	}

	if status.Verified() {
		return nil
	}
	return &Denied{
		Guard:  g.Name(),
		Reason: "kyc " + string(status),
		Remedy: chat.ActionKyc,
		Reply:  present.KycRequired(string(status)),
	}
}

// Refresh fetches the status and stores it in the session cache. Errors are
// not cached.
func (g *KycGuard) Refresh(ctx context.Context, sess *chat.Session) (*entity.KycInfo, error) {
	now := g.now()
	auth := sess.ActiveAuth(now)
	if auth == nil {
		return nil, entity.ErrUnauthorized
	}
	info, err := g.api.KycStatus(ctx, auth.AccessToken, auth.Profile.Email)
	if err != nil {
		return nil, err
	}
	err = g.sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		s.Kyc = &chat.KycCache{
			Status:      info.Status,
			NextSteps:   info.NextSteps,
			RefreshedAt: now,
		}
		return nil
	})
	if err != nil {
		g.log.Error("saving kyc status", slog.String("user_id", sess.UserID), sl.Err(err))
	}
	return info, nil
}

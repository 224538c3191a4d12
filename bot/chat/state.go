package chat

import (
	"time"

	"CopperxBot/entity"
)

// Session is the durable per-user record.
type Session struct {
	UserID    string     `json:"user_id" bson:"user_id"`
	ChatID    string     `json:"chat_id" bson:"chat_id"`
	Version   int64      `json:"version" bson:"version"`
	Auth      *AuthBlock `json:"auth,omitempty" bson:"auth,omitempty"`
	Kyc       *KycCache  `json:"kyc,omitempty" bson:"kyc,omitempty"`
	Flow      *Flow      `json:"flow,omitempty" bson:"flow,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// AuthBlock holds the payments API credentials of a logged in user.
type AuthBlock struct {
	AccessToken    string             `json:"access_token" bson:"access_token"`
	ExpiresAt      time.Time          `json:"expires_at" bson:"expires_at"`
	OrganizationID string             `json:"organization_id" bson:"organization_id"`
	Profile        entity.UserProfile `json:"profile" bson:"profile"`
	CheckedAt      time.Time          `json:"checked_at" bson:"checked_at"`
}

// Valid reports whether the block may be used for a privileged call at now.
func (a *AuthBlock) Valid(now time.Time) bool {
	return a != nil && a.AccessToken != "" && now.Before(a.ExpiresAt)
}

type KycCache struct {
	Status      entity.KycStatus `json:"status" bson:"status"`
	NextSteps   string           `json:"next_steps,omitempty" bson:"next_steps,omitempty"`
	RefreshedAt time.Time        `json:"refreshed_at" bson:"refreshed_at"`
}

func (k *KycCache) Fresh(now time.Time, ttl time.Duration) bool {
	return k != nil && now.Sub(k.RefreshedAt) < ttl
}

func NewSession(userID, chatID string) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		ChatID:    chatID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveAuth returns the auth block only while it has not expired.
func (s *Session) ActiveAuth(now time.Time) *AuthBlock {
	if s.Auth.Valid(now) {
		return s.Auth
	}
	return nil
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Auth != nil {
		auth := *s.Auth
		c.Auth = &auth
	}
	if s.Kyc != nil {
		kyc := *s.Kyc
		c.Kyc = &kyc
	}
	c.Flow = s.Flow.Clone()
	return &c
}

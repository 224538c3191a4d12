package session

import (
	"time"

	"CopperxBot/bot/chat"
)

// View is a session without credentials or flow payload.
type View struct {
	UserID    string     `json:"user_id"`
	ChatID    string     `json:"chat_id"`
	Version   int64      `json:"version"`
	LoggedIn  bool       `json:"logged_in"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Kyc       string     `json:"kyc,omitempty"`
	Flow      *FlowView  `json:"flow,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type FlowView struct {
	ID        string        `json:"id"`
	Kind      chat.FlowKind `json:"kind"`
	Step      chat.StepID   `json:"step"`
	Attempts  int           `json:"attempts"`
	StartedAt time.Time     `json:"started_at"`
}

func NewView(s *chat.Session, now time.Time) View {
	v := View{
		UserID:    s.UserID,
		ChatID:    s.ChatID,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
	if auth := s.ActiveAuth(now); auth != nil {
		v.LoggedIn = true
		v.Email = auth.Profile.Email
		expires := auth.ExpiresAt
		v.ExpiresAt = &expires
	}
	if s.Kyc != nil {
		v.Kyc = string(s.Kyc.Status)
	}
	if f := s.Flow; f != nil {
		v.Flow = &FlowView{
			ID:        f.ID,
			Kind:      f.Kind,
			Step:      f.Step,
			Attempts:  f.Attempts,
			StartedAt: f.StartedAt,
		}
	}
	return v
}

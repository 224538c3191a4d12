package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/lib/validate"
)

type EnterEmailStep struct {
	auth flows.AuthAPI
}

func (s *EnterEmailStep) ID() chat.StepID   { return StepEnterEmail }
func (s *EnterEmailStep) AcceptsText() bool { return true }

func (s *EnterEmailStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text:    "🔑 Enter the email address of your Copperx account:",
		Buttons: chat.Column(present.CancelButton()),
	}}
}

func (s *EnterEmailStep) HandleInput(ctx context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	email := strings.ToLower(strings.TrimSpace(in.Text))
	if !validate.IsValidEmail(email) {
		return chat.StepResult{Error: chat.Invalid("Please enter a valid email address.")}
	}
	challenge, err := s.auth.RequestOtp(ctx, email)
	if err != nil {
		return chat.StepResult{Error: chat.Upstream("request otp", err)}
	}
	sc.Flow.Login.Email = email
	sc.Flow.Login.Sid = challenge.Sid
	sc.Flow.Attempts = 0
	return chat.StepResult{NextStep: StepEnterOtp}
}

type EnterOtpStep struct {
	auth        flows.AuthAPI
	maxAttempts int
}

func (s *EnterOtpStep) ID() chat.StepID   { return StepEnterOtp }
func (s *EnterOtpStep) AcceptsText() bool { return true }

func (s *EnterOtpStep) Enter(_ context.Context, sc *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text: fmt.Sprintf("📨 We sent a one-time code to %s. Enter it here:", present.Escape(sc.Flow.Login.Email)),
		Buttons: [][]chat.InlineButton{{
			chat.Button("✏️ Change email", chat.NewAction(chat.ActionBack)),
			present.CancelButton(),
		}},
	}}
}

func (s *EnterOtpStep) HandleInput(ctx context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionBack {
		return chat.StepResult{NextStep: StepEnterEmail}
	}
	otp := strings.TrimSpace(in.Text)
	if !isCode(otp) {
		return chat.StepResult{Error: chat.Invalid("The code is the number from the email we sent you.")}
	}

	data := sc.Flow.Login
	result, err := s.auth.VerifyOtp(ctx, data.Email, otp, data.Sid)
	if errors.Is(err, entity.ErrInvalidOtp) {
		sc.Flow.Attempts++
		left := s.maxAttempts - sc.Flow.Attempts
		if left <= 0 {
			return chat.StepResult{Error: &chat.TerminalError{Message: "Too many invalid codes. Use /login to start again."}}
		}
		return chat.StepResult{Error: chat.Invalid("Invalid code. %d attempt(s) left.", left)}
	}
	if err != nil {
		return chat.StepResult{Error: chat.Upstream("verify otp", err)}
	}

	auth := authBlock(result, sc.Now)
	reply := chat.Reply{
		Text: fmt.Sprintf("✅ Logged in as %s.", present.Escape(result.User.DisplayName())),
		Menu: present.Welcome(true).Menu,
	}
	return chat.StepResult{
		Complete: true,
		Reply:    &reply,
		Apply: func(s *chat.Session) {
			block := auth
			s.Auth = &block
			s.Kyc = nil
		},
	}
}

func authBlock(r *entity.AuthResult, now time.Time) chat.AuthBlock {
	expires := time.Unix(r.ExpireAt, 0)
	if r.ExpireAt == 0 {
		expires = now.Add(24 * time.Hour)
	}
	return chat.AuthBlock{
		AccessToken:    r.AccessToken,
		ExpiresAt:      expires,
		OrganizationID: r.User.OrganizationID,
		Profile:        r.User,
		CheckedAt:      now,
	}
}

func isCode(s string) bool {
	if len(s) < 4 || len(s) > 8 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

package copperx

import (
	"context"
	"net/http"
	"net/url"

	"CopperxBot/entity"
)

type kycResponse struct {
	Status    string `json:"status"`
	NextSteps string `json:"nextSteps"`
	Limits    string `json:"limits"`
}

func (c *Client) KycStatus(ctx context.Context, token, email string) (*entity.KycInfo, error) {
	var out kycResponse
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/kycs/status/" + url.PathEscape(email),
		token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &entity.KycInfo{
		Status:    kycStatus(out.Status),
		NextSteps: out.NextSteps,
		Limits:    out.Limits,
	}, nil
}

// kycStatus folds the API's finer statuses into the five the bot knows.
func kycStatus(s string) entity.KycStatus {
	switch s {
	case "approved", "verified":
		return entity.KycVerified
	case "pending", "initiated", "inprogress", "in_progress", "review_pending", "provider_manual_review", "manual_review":
		return entity.KycPending
	case "rejected", "provider_rejected":
		return entity.KycRejected
	case "expired":
		return entity.KycExpired
	}
	return entity.KycNotStarted
}

package entity

import (
	"strings"
)

type UserProfile struct {
	ID             string `json:"id" bson:"id" validate:"required"`
	FirstName      string `json:"firstName" bson:"first_name"`
	LastName       string `json:"lastName" bson:"last_name"`
	Email          string `json:"email" bson:"email" validate:"required,email"`
	OrganizationID string `json:"organizationId" bson:"organization_id"`
	Role           string `json:"role" bson:"role"`
	Status         string `json:"status" bson:"status"`
	WalletAddress  string `json:"walletAddress" bson:"wallet_address"`
}

func (p *UserProfile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// OtpChallenge is returned when a one-time code is emailed to the user.
type OtpChallenge struct {
	Email string `json:"email" validate:"required,email"`
	Sid   string `json:"sid" validate:"required"`
}

type AuthResult struct {
	AccessToken string      `json:"accessToken" validate:"required"`
	ExpireAt    int64       `json:"expireAt"`
	User        UserProfile `json:"user"`
}

package entity

type KycStatus string

const (
	KycNotStarted KycStatus = "not_started"
	KycPending    KycStatus = "pending"
	KycVerified   KycStatus = "verified"
	KycRejected   KycStatus = "rejected"
	KycExpired    KycStatus = "expired"
)

func (s KycStatus) Verified() bool {
	return s == KycVerified
}

type KycInfo struct {
	Status    KycStatus `json:"status" bson:"status"`
	NextSteps string    `json:"nextSteps,omitempty" bson:"next_steps,omitempty"`
	Limits    string    `json:"limits,omitempty" bson:"limits,omitempty"`
}

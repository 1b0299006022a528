package service

import (
	"passvault/internal/entity"

	"github.com/google/uuid"
)

type OutcomeStatus int

const (
	OutcomeRejected OutcomeStatus = iota
	OutcomePendingTwoFactor
	OutcomeAuthorized
)

// PendingAuthorization marks "password correct, second factor still
// required". It carries no trust: no token is ever minted from it.
type PendingAuthorization struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// Outcome is the tri-state result of Authorize. Exactly one of User or
// Pending is set, depending on Status.
type Outcome struct {
	Status  OutcomeStatus
	User    *entity.User
	Pending *PendingAuthorization
}

func rejected() Outcome {
	return Outcome{Status: OutcomeRejected}
}

func pendingTwoFactor(user *entity.User) Outcome {
	return Outcome{
		Status: OutcomePendingTwoFactor,
		Pending: &PendingAuthorization{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		},
	}
}

func authorized(user *entity.User) Outcome {
	return Outcome{Status: OutcomeAuthorized, User: user}
}

package auth

import (
	"github.com/frahmantamala/expense-tracker/internal"
)

// Verifier resolves an opaque caller identifier to a User. Implementations
// plug in whatever identity system backs the deployment.
type Verifier interface {
	Verify(userID string) (*User, error)
}

// StaticVerifier accepts exactly one user identifier. It is the development
// implementation standing in for a real identity provider.
type StaticVerifier struct {
	AllowedID string
}

func NewStaticVerifier(allowedID string) *StaticVerifier {
	if allowedID == "" {
		allowedID = internal.DefaultAllowedUserID
	}
	return &StaticVerifier{AllowedID: allowedID}
}

func (v *StaticVerifier) Verify(userID string) (*User, error) {
	if userID != v.AllowedID {
		return nil, internal.ErrIdentityRejected
	}
	return &User{
		ID:   v.AllowedID,
		Name: "Demo User",
	}, nil
}

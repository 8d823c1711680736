// Package models defines the records kept on the device and mirrored to the
// remote store: identities, tracked resources, scan reports and generated
// content.
package models

import (
	"time"

	"github.com/google/uuid"
)

// InitialCredit is granted to new metered identities.
const InitialCredit = 3

// Identity is a registered account.
type Identity struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Plan      Plan      `json:"plan"`
	Credit    int       `json:"credit"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewIdentity creates an identity with a fresh id. Metered identities start
// with InitialCredit.
func NewIdentity(username, email string, plan Plan, now time.Time) *Identity {
	i := &Identity{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Plan:      plan,
		CreatedAt: now.UTC(),
	}
	if Capabilities(plan).RequiresCredit {
		i.Credit = InitialCredit
	}
	return i
}

// SetCredit stores n, clamped to zero.
func (i *Identity) SetCredit(n int) {
	if n < 0 {
		n = 0
	}
	i.Credit = n
}

// AddCredits adds n (which may be negative) to the balance.
func (i *Identity) AddCredits(n int) {
	i.SetCredit(i.Credit + n)
}

// ConsumeCredit takes one credit if the plan is metered. It reports whether
// a credit was actually taken.
func (i *Identity) ConsumeCredit() bool {
	if !i.Capabilities().RequiresCredit || i.Credit <= 0 {
		return false
	}
	i.SetCredit(i.Credit - 1)
	return true
}

// CanScan reports whether one more scan can be paid for when reserved
// credits are already promised to scans in flight. Unmetered plans always can.
func (i *Identity) CanScan(reserved int) bool {
	return !i.Capabilities().RequiresCredit || i.Credit-reserved > 0
}

func (i *Identity) Capabilities() Capability {
	return Capabilities(i.Plan)
}

// Clone returns a copy safe to hand to another goroutine.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Package guard holds the single administrative identity and authorizes
// mutating lifecycle calls against it.
package guard

import (
	"errors"

	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
)

// ErrNotAuthorized is returned when the caller is not the admin.
var ErrNotAuthorized = dErrors.New(dErrors.CodeNotAuthorized, "caller is not the issuer admin")

// Guard is immutable once built; there is no way to change the admin.
type Guard struct {
	admin domain.Address
}

// New fixes the admin for the lifetime of the Guard.
func New(admin domain.Address) (*Guard, error) {
	if admin.IsNil() {
		return nil, errors.New("admin address is required")
	}
	return &Guard{admin: admin}, nil
}

// AssertAdmin returns ErrNotAuthorized unless caller is exactly the admin.
func (g *Guard) AssertAdmin(caller domain.Address) error {
	if caller != g.admin {
		return ErrNotAuthorized
	}
	return nil
}

func (g *Guard) Admin() domain.Address {
	return g.admin
}

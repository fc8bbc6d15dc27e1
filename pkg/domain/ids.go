// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"
	"strings"
	"unicode"

	dErrors "credverify/pkg/domain-errors"
)

// MaxAddressLength bounds principal identifiers accepted at trust boundaries.
const MaxAddressLength = 128

// CredentialID identifies a credential. Values are assigned by the ledger when
// the underlying asset is created; this service never picks them.
type CredentialID uint64

// Address identifies a principal: the admin, the service's own ledger account,
// or a holder. Comparison is exact.
type Address string

// Parse functions - use at trust boundaries (handlers, API inputs).

// ParseCredentialID accepts any uint64, including 0. Zero is never assigned by
// the ledger, so it simply reads as a never-issued id.
func ParseCredentialID(s string) (CredentialID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "credential ID cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid credential ID format")
	}
	return CredentialID(v), nil
}

func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if len(s) > MaxAddressLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address too long")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid address format")
		}
	}
	return Address(s), nil
}

// String methods - for logging and debugging.

func (id CredentialID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (a Address) String() string       { return string(a) }

// IsNil checks - used for service-layer validation.

func (id CredentialID) IsNil() bool { return id == 0 }
func (a Address) IsNil() bool       { return a == "" }

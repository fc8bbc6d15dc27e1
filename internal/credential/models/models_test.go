package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevocationRecord_State(t *testing.T) {
	var missing *RevocationRecord
	assert.Equal(t, StateUnissued, missing.State())
	assert.Equal(t, StateActive, (&RevocationRecord{CredentialID: 1}).State())
	assert.Equal(t, StateRevoked, (&RevocationRecord{CredentialID: 1, Revoked: true}).State())
}

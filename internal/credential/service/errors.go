package service

import (
	"errors"

	"credverify/internal/credential/store"
	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/sentinel"
)

func unknownCredential(id domain.CredentialID) error {
	return dErrors.New(dErrors.CodeUnknownCredential, "credential "+id.String()+" was not issued by this service")
}

func alreadyRevoked(id domain.CredentialID) error {
	return dErrors.New(dErrors.CodeAlreadyRevoked, "credential "+id.String()+" is already revoked")
}

// externalEffectFailed wraps any ledger failure; the ledger's own reason is kept
// in the chain for logs but not exposed in the message.
func externalEffectFailed(err error, step string) error {
	msg := "ledger rejected " + step
	if errors.Is(err, sentinel.ErrUnavailable) {
		msg = "ledger unavailable during " + step
	}
	return dErrors.Wrap(err, dErrors.CodeExternalEffectFailed, msg)
}

// registryError translates a store failure exactly once.
func registryError(err error, id domain.CredentialID, op string) error {
	switch {
	case errors.Is(err, store.ErrAlreadyRevoked):
		return alreadyRevoked(id)
	case errors.Is(err, sentinel.ErrNotFound):
		return unknownCredential(id)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "registry "+op+" failed")
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}

package service

import (
	"bytes"
	"errors"
	"log/slog"

	"go.uber.org/mock/gomock"

	"credverify/internal/credential/guard"
	"credverify/internal/credential/ledger"
	"credverify/internal/credential/models"
	"credverify/internal/credential/store"
	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/sentinel"
)

const credID domain.CredentialID = 1001

func issueRequest() models.IssueRequest {
	return models.IssueRequest{
		Holder:   holder,
		Name:     "BSc Computer Science",
		UnitName: "DEGREE",
		URL:      "ipfs://bafybeigdyrzt",
	}
}

func (s *ServiceSuite) TestIssueCredential() {
	s.Run("creates asset controlled by the service then inserts record", func() {
		wantCfg := ledger.AssetConfig{
			Name:     "BSc Computer Science",
			UnitName: "DEGREE",
			URL:      "ipfs://bafybeigdyrzt",
			Total:    1,
			Manager:  account,
			Reserve:  holder,
			Freeze:   account,
			Clawback: account,
		}
		gomock.InOrder(
			s.mockLedger.EXPECT().CreateUniqueAsset(gomock.Any(), wantCfg).Return(credID, nil),
			s.mockRegistry.EXPECT().Insert(gomock.Any(), credID, fixedNow).Return(nil),
			s.expectAudit(string(audit.EventCredentialIssued)),
		)

		cred, err := s.service.IssueCredential(s.ctx, admin, issueRequest())
		s.Require().NoError(err)
		s.Equal(credID, cred.ID)
		s.Equal(admin, cred.Issuer)
		s.Equal(holder, cred.Reserve)
		s.Equal(account, cred.Clawback)
		s.Equal(uint64(1), cred.Total)
		s.Equal(uint32(0), cred.Decimals)
		s.False(cred.DefaultFrozen)
		s.Equal(fixedNow, cred.IssuedAt)
	})

	s.Run("non-admin creates nothing", func() {
		s.expectAudit(string(audit.EventAccessDenied))

		cred, err := s.service.IssueCredential(s.ctx, intruder, issueRequest())
		s.Nil(cred)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("blank metadata is rejected before the ledger", func() {
		req := issueRequest()
		req.UnitName = "  "

		_, err := s.service.IssueCredential(s.ctx, admin, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("ledger rejection leaves no record", func() {
		s.mockLedger.EXPECT().CreateUniqueAsset(gomock.Any(), gomock.Any()).
			Return(domain.CredentialID(0), errors.Join(sentinel.ErrRejected, errors.New("min balance")))

		_, err := s.service.IssueCredential(s.ctx, admin, issueRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeExternalEffectFailed))
	})

	s.Run("registry failure after creation is internal", func() {
		s.mockLedger.EXPECT().CreateUniqueAsset(gomock.Any(), gomock.Any()).Return(credID, nil)
		s.mockRegistry.EXPECT().Insert(gomock.Any(), credID, gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.IssueCredential(s.ctx, admin, issueRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("duplicate id from ledger is internal", func() {
		s.mockLedger.EXPECT().CreateUniqueAsset(gomock.Any(), gomock.Any()).Return(credID, nil)
		s.mockRegistry.EXPECT().Insert(gomock.Any(), credID, gomock.Any()).Return(sentinel.ErrAlreadyExists)

		_, err := s.service.IssueCredential(s.ctx, admin, issueRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestTransferToHolder() {
	s.Run("moves one unit from service custody", func() {
		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, account, holder, uint64(1)).Return(nil),
			s.expectAudit(string(audit.EventCredentialTransferred)),
		)

		s.NoError(s.service.TransferToHolder(s.ctx, admin, credID, holder))
	})

	s.Run("unknown id submits nothing", func() {
		s.mockRegistry.EXPECT().Get(gomock.Any(), domain.CredentialID(999)).Return(false, false, nil)

		err := s.service.TransferToHolder(s.ctx, admin, 999, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownCredential))
	})

	s.Run("revoked id submits nothing", func() {
		s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(true, true, nil)

		err := s.service.TransferToHolder(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))
	})

	s.Run("non-admin never reaches the registry", func() {
		s.expectAudit(string(audit.EventAccessDenied))

		err := s.service.TransferToHolder(s.ctx, intruder, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("holder not opted in", func() {
		s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil)
		s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, account, holder, uint64(1)).
			Return(errors.Join(sentinel.ErrRejected, errors.New("receiver not opted in")))

		err := s.service.TransferToHolder(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeExternalEffectFailed))
	})

	s.Run("registry failure is internal", func() {
		s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, false, errors.New("timeout"))

		err := s.service.TransferToHolder(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestRevokeCredential() {
	s.Run("freezes, claws back, then flips the record", func() {
		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, true).Return(nil),
			s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, holder, account, uint64(1)).Return(nil),
			s.mockRegistry.EXPECT().SetRevoked(gomock.Any(), credID, fixedNow).Return(nil),
			s.expectAudit(string(audit.EventCredentialRevoked)),
		)

		s.NoError(s.service.RevokeCredential(s.ctx, admin, credID, holder))
	})

	s.Run("failed freeze stops before clawback", func() {
		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, true).Return(errors.New("node down")),
		)

		err := s.service.RevokeCredential(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeExternalEffectFailed))
	})

	s.Run("failed clawback lifts the freeze and keeps the record", func() {
		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, true).Return(nil),
			s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, holder, account, uint64(1)).
				Return(errors.Join(sentinel.ErrRejected, errors.New("insufficient balance"))),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, false).Return(nil),
		)

		err := s.service.RevokeCredential(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeExternalEffectFailed))
	})

	s.Run("failed compensation still reports the clawback failure", func() {
		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, true).Return(nil),
			s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, holder, account, uint64(1)).Return(errors.New("timeout")),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, false).Return(errors.New("timeout")),
		)

		err := s.service.RevokeCredential(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeExternalEffectFailed))
	})

	s.Run("already revoked submits nothing", func() {
		s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(true, true, nil)

		err := s.service.RevokeCredential(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))
	})

	s.Run("unknown id submits nothing", func() {
		s.mockRegistry.EXPECT().Get(gomock.Any(), domain.CredentialID(999)).Return(false, false, nil)

		err := s.service.RevokeCredential(s.ctx, admin, 999, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownCredential))
	})

	s.Run("non-admin", func() {
		s.expectAudit(string(audit.EventAccessDenied))

		err := s.service.RevokeCredential(s.ctx, intruder, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("registry failure after clawback is internal and not audited", func() {
		var logs bytes.Buffer
		g, err := guard.New(admin)
		s.Require().NoError(err)
		svc, err := New(g, s.mockRegistry, s.mockLedger, account,
			WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
			WithAuditor(s.mockAuditor),
		)
		s.Require().NoError(err)

		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, true).Return(nil),
			s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, holder, account, uint64(1)).Return(nil),
			s.mockRegistry.EXPECT().SetRevoked(gomock.Any(), credID, fixedNow).Return(errors.New("connection reset")),
		)
		// No Emit expectation: a revoked event here would fail the controller.

		err = svc.RevokeCredential(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(logs.String(), `"level":"ERROR"`)
		s.Contains(logs.String(), "registry update failed after clawback")
		s.Contains(logs.String(), `"credential_id":1001`)
	})

	s.Run("lost race on the record maps to already revoked", func() {
		gomock.InOrder(
			s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil),
			s.mockLedger.EXPECT().Freeze(gomock.Any(), credID, holder, true).Return(nil),
			s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, holder, account, uint64(1)).Return(nil),
			s.mockRegistry.EXPECT().SetRevoked(gomock.Any(), credID, gomock.Any()).Return(store.ErrAlreadyRevoked),
		)

		err := s.service.RevokeCredential(s.ctx, admin, credID, holder)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))
	})
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailOperation() {
	s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil)
	s.mockLedger.EXPECT().Transfer(gomock.Any(), credID, account, holder, uint64(1)).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit buffer full"))

	s.NoError(s.service.TransferToHolder(s.ctx, admin, credID, holder))
}

func (s *ServiceSuite) TestAuthorize() {
	s.Run("admin passes silently", func() {
		s.NoError(s.service.Authorize(s.ctx, admin, "revoke", credID))
	})

	s.Run("non-admin is denied and audited", func() {
		s.expectAudit(string(audit.EventAccessDenied))

		err := s.service.Authorize(s.ctx, intruder, "revoke", credID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
}

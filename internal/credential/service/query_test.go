package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	"credverify/internal/credential/ledger"
	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestIssuerInfo() {
	s.Equal(admin, s.service.IssuerInfo(s.ctx))
	s.Equal(account, s.service.ServiceAccount())
}

func (s *ServiceSuite) TestRevocationStatus() {
	s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(true, true, nil)
	status, err := s.service.RevocationStatus(s.ctx, credID)
	s.Require().NoError(err)
	s.Equal(models.RevocationStatus{CredentialID: credID, Found: true, Revoked: true, State: models.StateRevoked}, *status)

	s.mockRegistry.EXPECT().Get(gomock.Any(), domain.CredentialID(7)).Return(false, false, nil)
	status, err = s.service.RevocationStatus(s.ctx, 7)
	s.Require().NoError(err)
	s.False(status.Found)
	s.Equal(models.StateUnissued, status.State)
}

func (s *ServiceSuite) TestContains() {
	s.mockRegistry.EXPECT().Contains(gomock.Any(), credID).Return(true, nil)
	found, err := s.service.Contains(s.ctx, credID)
	s.Require().NoError(err)
	s.True(found)

	s.mockRegistry.EXPECT().Contains(gomock.Any(), credID).Return(false, errors.New("down"))
	_, err = s.service.Contains(s.ctx, credID)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestCredential() {
	s.Run("joins record and ledger params", func() {
		revokedAt := fixedNow.Add(0)
		s.mockRegistry.EXPECT().Find(gomock.Any(), credID).Return(&models.RevocationRecord{
			CredentialID: credID, Revoked: true, IssuedAt: fixedNow, RevokedAt: &revokedAt,
		}, nil)
		s.mockReader.EXPECT().AssetInfo(gomock.Any(), credID).Return(&ledger.AssetParams{
			ID:      credID,
			Creator: account,
			AssetConfig: ledger.AssetConfig{
				Name: "Diploma", UnitName: "DIP", URL: "ipfs://x", Total: 1, Reserve: holder,
				Manager: account, Freeze: account, Clawback: account,
			},
		}, nil)

		details, err := s.service.Credential(s.ctx, credID)
		s.Require().NoError(err)
		s.Equal(models.StateRevoked, details.State)
		s.Equal("Diploma", details.Name)
		s.Equal(holder, details.Reserve)
		s.Equal(admin, details.Issuer)
	})

	s.Run("unknown id", func() {
		s.mockRegistry.EXPECT().Find(gomock.Any(), domain.CredentialID(5)).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Credential(s.ctx, 5)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownCredential))
	})
}

func (s *ServiceSuite) TestVerifyHolder() {
	const foreign domain.CredentialID = 77
	s.mockReader.EXPECT().AccountHoldings(gomock.Any(), holder).Return([]ledger.Holding{
		{AssetID: credID, Amount: 1},
		{AssetID: 1002, Amount: 0},
		{AssetID: foreign, Amount: 1},
		{AssetID: 1003, Amount: 1},
	}, nil)
	s.mockReader.EXPECT().AssetInfo(gomock.Any(), credID).Return(&ledger.AssetParams{ID: credID, Creator: account, AssetConfig: ledger.AssetConfig{Name: "A"}}, nil)
	s.mockReader.EXPECT().AssetInfo(gomock.Any(), foreign).Return(&ledger.AssetParams{ID: foreign, Creator: "SOMEONE-ELSE"}, nil)
	s.mockReader.EXPECT().AssetInfo(gomock.Any(), domain.CredentialID(1003)).Return(&ledger.AssetParams{ID: 1003, Creator: account, AssetConfig: ledger.AssetConfig{Name: "B"}}, nil)
	s.mockRegistry.EXPECT().Get(gomock.Any(), credID).Return(false, true, nil)
	s.mockRegistry.EXPECT().Get(gomock.Any(), domain.CredentialID(1003)).Return(true, true, nil)

	held, err := s.service.VerifyHolder(s.ctx, holder)
	s.Require().NoError(err)
	s.Require().Len(held, 2)
	s.Equal(credID, held[0].CredentialID)
	s.True(held[0].Valid)
	s.Equal(domain.CredentialID(1003), held[1].CredentialID)
	s.True(held[1].Revoked)
	s.False(held[1].Valid)
}

func (s *ServiceSuite) TestVerifyHolder_LedgerFailure() {
	s.mockReader.EXPECT().AccountHoldings(gomock.Any(), holder).Return(nil, errors.New("indexer down"))

	_, err := s.service.VerifyHolder(s.ctx, holder)
	s.True(dErrors.HasCode(err, dErrors.CodeExternalEffectFailed))
}

package handler

import (
	"strings"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	"credverify/pkg/validation"
)

// IssueCredentialRequest is the body of POST /credentials.
type IssueCredentialRequest struct {
	Holder   string `json:"holder" validate:"required,address"`
	Name     string `json:"name" validate:"required,notblank,max=256"`
	UnitName string `json:"unit_name" validate:"required,notblank,max=64"`
	URL      string `json:"url" validate:"required,notblank,max=512"`
}

// Normalize trims the holder address; metadata is opaque and kept verbatim.
func (r *IssueCredentialRequest) Normalize() {
	if r == nil {
		return
	}
	r.Holder = strings.TrimSpace(r.Holder)
}

func (r *IssueCredentialRequest) Validate() error {
	return validation.Validate(r)
}

func (r *IssueCredentialRequest) ToModel() models.IssueRequest {
	return models.IssueRequest{
		Holder:   domain.Address(r.Holder),
		Name:     r.Name,
		UnitName: r.UnitName,
		URL:      r.URL,
	}
}

// HolderRequest is the body of the transfer and revoke routes.
type HolderRequest struct {
	Holder string `json:"holder" validate:"required,address"`
}

func (r *HolderRequest) Normalize() {
	if r == nil {
		return
	}
	r.Holder = strings.TrimSpace(r.Holder)
}

func (r *HolderRequest) Validate() error {
	return validation.Validate(r)
}

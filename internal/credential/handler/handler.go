// Package handler exposes the credential lifecycle and verification queries
// over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credverify/internal/credential/models"
	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

// Service defines the credential operations used by the handler.
type Service interface {
	Authorize(ctx context.Context, caller domain.Address, op string, id domain.CredentialID) error
	IssueCredential(ctx context.Context, caller domain.Address, req models.IssueRequest) (*models.Credential, error)
	TransferToHolder(ctx context.Context, caller domain.Address, id domain.CredentialID, holder domain.Address) error
	RevokeCredential(ctx context.Context, caller domain.Address, id domain.CredentialID, holder domain.Address) error
	IssuerInfo(ctx context.Context) domain.Address
	ServiceAccount() domain.Address
	RevocationStatus(ctx context.Context, id domain.CredentialID) (*models.RevocationStatus, error)
	Credential(ctx context.Context, id domain.CredentialID) (*models.CredentialDetails, error)
	VerifyHolder(ctx context.Context, holder domain.Address) ([]models.HeldCredential, error)
}

// OptInLedger is the holder-side ledger action exposed in development.
type OptInLedger interface {
	OptIn(ctx context.Context, id domain.CredentialID, account domain.Address) error
}

type Handler struct {
	service Service
	optIn   OptInLedger
	logger  *slog.Logger
}

// New creates a credential Handler. optIn may be nil, which leaves the
// opt-in route unregistered.
func New(service Service, optIn OptInLedger, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		optIn:   optIn,
		logger:  logger,
	}
}

// RegisterPublic registers the read-only routes, which need no caller identity.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/issuer", h.HandleIssuerInfo)
	r.Get("/credentials/{id}", h.HandleGetCredential)
	r.Get("/credentials/{id}/status", h.HandleStatus)
	r.Get("/holders/{address}/credentials", h.HandleHolderCredentials)
}

// RegisterAuthenticated registers the routes that act on behalf of the caller.
// The router must install caller authentication in front of them.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/credentials", h.HandleIssue)
	r.Post("/credentials/{id}/transfer", h.HandleTransfer)
	r.Post("/credentials/{id}/revoke", h.HandleRevoke)
	if h.optIn != nil {
		r.Post("/ledger/assets/{id}/opt-in", h.HandleOptIn)
	}
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	// Non-admins are refused before their body is looked at.
	if !h.authorize(w, r, caller, "issue", 0) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[IssueCredentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cred, err := h.service.IssueCredential(ctx, caller, req.ToModel())
	if err != nil {
		h.logFailure(ctx, "failed to issue credential", err, "holder", req.Holder)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credential issued",
		"credential_id", cred.ID,
		"holder", cred.Reserve,
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, toIssuedResponse(cred))
}

func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	h.handleHolderAction(w, r, "transfer", models.StateActive, h.service.TransferToHolder)
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.handleHolderAction(w, r, "revoke", models.StateRevoked, h.service.RevokeCredential)
}

type holderAction func(ctx context.Context, caller domain.Address, id domain.CredentialID, holder domain.Address) error

func (h *Handler) handleHolderAction(w http.ResponseWriter, r *http.Request, op string, after models.State, action holderAction) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, r, caller, op, id) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[HolderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	holder := domain.Address(req.Holder)

	if err := action(ctx, caller, id, holder); err != nil {
		h.logFailure(ctx, "failed to "+op+" credential", err, "credential_id", id, "holder", holder)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ActionResponse{
		CredentialID: id,
		Holder:       holder,
		State:        after,
	})
}

// HandleOptIn lets the authenticated caller opt its own account in to an asset.
func (h *Handler) HandleOptIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}

	if err := h.optIn.OptIn(ctx, id, caller); err != nil {
		h.logFailure(ctx, "ledger opt-in failed", err, "credential_id", id, "account", caller)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeExternalEffectFailed, "ledger rejected opt-in"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleIssuerInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &IssuerResponse{
		Admin:   h.service.IssuerInfo(r.Context()),
		Service: h.service.ServiceAccount(),
	})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}

	status, err := h.service.RevocationStatus(ctx, id)
	if err != nil {
		h.logFailure(ctx, "failed to read revocation status", err, "credential_id", id)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.credentialID(w, r)
	if !ok {
		return
	}

	details, err := h.service.Credential(ctx, id)
	if err != nil {
		h.logFailure(ctx, "failed to load credential", err, "credential_id", id)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDetailsResponse(details))
}

func (h *Handler) HandleHolderCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holder, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	held, err := h.service.VerifyHolder(ctx, holder)
	if err != nil {
		h.logFailure(ctx, "failed to verify holder", err, "holder", holder)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHolderResponse(holder, held))
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok || caller.IsNil() {
		h.logger.ErrorContext(r.Context(), "caller missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return caller, true
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, caller domain.Address, op string, id domain.CredentialID) bool {
	if err := h.service.Authorize(r.Context(), caller, op, id); err != nil {
		h.logFailure(r.Context(), op+" refused", err, "caller", caller)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) credentialID(w http.ResponseWriter, r *http.Request) (domain.CredentialID, bool) {
	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// logFailure logs client-caused failures at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
}

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"credverify/internal/callertoken"
	"credverify/internal/credential/guard"
	"credverify/internal/credential/handler"
	"credverify/internal/credential/ledger"
	"credverify/internal/credential/service"
	"credverify/internal/credential/store"
	"credverify/internal/platform/health"
	httptransport "credverify/internal/transport/http"
	"credverify/pkg/domain"
	"credverify/pkg/platform/middleware/request"
)

const (
	serviceAccount = "CREDVERIFY-SERVICE"
	signingKey     = "e2e-signing-key"
	firstAssetID   = 101
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	server  *httptest.Server
	tokens  *callertoken.Service
	ledger  *ledger.InMemoryLedger
	savedID map[string]string
}

// NewTestContext creates a new test context with no server running.
func NewTestContext() *TestContext {
	return &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		savedID:    make(map[string]string),
	}
}

// Start runs the full router in-process with admin as the issuer admin.
func (tc *TestContext) Start(admin string) error {
	tc.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	adminAddr, err := domain.ParseAddress(admin)
	if err != nil {
		return err
	}
	g, err := guard.New(adminAddr)
	if err != nil {
		return err
	}
	tokens, err := callertoken.New(signingKey, time.Hour)
	if err != nil {
		return err
	}
	chain := ledger.NewInMemory(serviceAccount, firstAssetID)
	svc, err := service.New(g, store.NewInMemory(), chain, serviceAccount,
		service.WithHoldingsReader(chain),
		service.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   logger,
		Verifier: tokens,
		Health:   health.New("e2e"),
		Gatherer: reg,
		Metrics:  request.NewMetrics(reg),
		Handlers: []httptransport.RouteRegistrar{handler.New(svc, chain, logger)},
	})

	tc.server = httptest.NewServer(router)
	tc.BaseURL = tc.server.URL
	tc.tokens = tokens
	tc.ledger = chain
	return nil
}

func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

// POSTAs makes a POST request authenticated as caller; an empty caller sends
// no Authorization header.
func (tc *TestContext) POSTAs(path string, body any, caller string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		token, err := tc.tokens.Mint(context.Background(), domain.Address(caller))
		if err != nil {
			return fmt.Errorf("failed to mint caller token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return tc.do(req)
}

// POST makes an unauthenticated POST request.
func (tc *TestContext) POST(path string, body any) error {
	return tc.POSTAs(path, body, "")
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.server == nil {
		return fmt.Errorf("credential verifier is not running")
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField resolves a dotted path such as "credentials.0.valid".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	current := data
	for _, part := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %s not found in response", field)
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("field %s not found in response", field)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return current, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	_, err := tc.GetResponseField(text)
	return err == nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

// SaveID remembers a credential id under a scenario-local alias.
func (tc *TestContext) SaveID(alias, id string) {
	tc.savedID[alias] = id
}

// ResolveID returns the id saved under alias, or alias itself when it is
// already a literal id.
func (tc *TestContext) ResolveID(alias string) (string, error) {
	if id, ok := tc.savedID[alias]; ok {
		return id, nil
	}
	if _, err := strconv.ParseUint(alias, 10, 64); err == nil {
		return alias, nil
	}
	return "", fmt.Errorf("no credential saved as %q", alias)
}

// LedgerBalance reads a holding directly from the in-process ledger.
func (tc *TestContext) LedgerBalance(account, id string) (uint64, bool, error) {
	credID, err := domain.ParseCredentialID(id)
	if err != nil {
		return 0, false, err
	}
	holdings, err := tc.ledger.AccountHoldings(context.Background(), domain.Address(account))
	if err != nil {
		return 0, false, err
	}
	for _, h := range holdings {
		if h.AssetID == credID {
			return h.Amount, h.Frozen, nil
		}
	}
	return 0, false, nil
}

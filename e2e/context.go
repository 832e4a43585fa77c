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
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sbt/internal/app"
	jwttoken "sbt/internal/jwt_token"
	"sbt/internal/platform/config"
	"sbt/pkg/domain"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	Tokens           *jwttoken.JWTService

	app    *app.App
	server *httptest.Server
}

// NewTestContext targets BASE_URL when set. Otherwise it starts an in-memory
// server that lives for one scenario.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL: os.Getenv("BASE_URL"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start brings up the in-process server, or builds a token signer for the
// remote one from JWT_SIGNING_KEY.
func (tc *TestContext) Start(ctx context.Context, issuer string) error {
	if tc.BaseURL != "" {
		key := os.Getenv("JWT_SIGNING_KEY")
		if key == "" {
			return fmt.Errorf("JWT_SIGNING_KEY is required when BASE_URL is set")
		}
		tc.Tokens = jwttoken.NewJWTService(key, jwttoken.DefaultIssuer, jwttoken.DefaultAudience, time.Minute)
		return nil
	}

	cfg := config.Server{
		Environment:    "e2e",
		RequestTimeout: 5 * time.Second,
		Store:          config.StoreMemory,
		JWTSigningKey:  "e2e-signing-key",
		TokenTTL:       time.Minute,
		Registry: config.Registry{
			Issuer:  domain.Account(issuer),
			BaseURI: "http://localhost/sbt/",
			Name:    "KYC Credential",
			Symbol:  "KYC",
		},
	}
	a, err := app.New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	tc.app = a
	tc.server = httptest.NewServer(a.Handler)
	tc.BaseURL = tc.server.URL
	tc.Tokens = a.Tokens
	return nil
}

// Stop shuts the in-process server down. It is a no-op against BASE_URL.
func (tc *TestContext) Stop() error {
	if tc.server == nil {
		return nil
	}
	tc.server.Close()
	return tc.app.Close()
}

// BearerFor returns auth headers for account.
func (tc *TestContext) BearerFor(account string) (map[string]string, error) {
	token, err := tc.Tokens.GenerateAccessToken(context.Background(), domain.Account(account))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token for %s: %w", account, err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.POSTWithHeaders(path, body, nil)
}

// POSTWithHeaders makes a POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body interface{}, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
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

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

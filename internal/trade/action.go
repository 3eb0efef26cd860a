package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action performs one purchase attempt for an address.
type Action interface {
	// Execute performs a single buy attempt. One call, one order; the
	// retry budget belongs to the Executor.
	Execute(ctx context.Context, address string) error

	// Close releases resources. Safe to call repeatedly and after a
	// failed start.
	Close() error
}

// DefaultBuyPath is the order endpoint path.
const DefaultBuyPath = "/v1/buy"

// APIError represents an error response from the execution endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trade api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// HTTPAction posts buy orders to an execution endpoint.
type HTTPAction struct {
	baseURL string
	buyPath string
	creds   *Credentials
	amount  decimal.Decimal
	dryRun  bool

	httpClient *http.Client
	logger     *slog.Logger
}

// ActionOption configures an HTTPAction.
type ActionOption func(*HTTPAction)

// NewHTTPAction creates a trade action posting orders of the given amount.
// A nil creds sends unsigned requests.
func NewHTTPAction(baseURL string, creds *Credentials, amount decimal.Decimal, opts ...ActionOption) *HTTPAction {
	a := &HTTPAction{
		baseURL: strings.TrimRight(baseURL, "/"),
		buyPath: DefaultBuyPath,
		creds:   creds,
		amount:  amount,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ActionOption {
	return func(a *HTTPAction) {
		a.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ActionOption {
	return func(a *HTTPAction) {
		a.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ActionOption {
	return func(a *HTTPAction) {
		a.httpClient = hc
	}
}

// WithBuyPath overrides the order endpoint path.
func WithBuyPath(path string) ActionOption {
	return func(a *HTTPAction) {
		a.buyPath = path
	}
}

// WithDryRun makes Execute log the order instead of sending it.
func WithDryRun(dryRun bool) ActionOption {
	return func(a *HTTPAction) {
		a.dryRun = dryRun
	}
}

// orderRequest is the order body posted to the execution endpoint.
type orderRequest struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

// Execute posts one buy order. Non-2xx responses come back as *APIError.
func (a *HTTPAction) Execute(ctx context.Context, address string) error {
	body, err := json.Marshal(orderRequest{
		Address: address,
		Amount:  a.amount,
	})
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	if a.dryRun {
		a.logger.Info("dry run, order not sent",
			"address", address,
			"amount", a.amount,
		)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.buyPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.creds != nil {
		for k, v := range a.creds.SignRequest(http.MethodPost, a.buyPath, body) {
			req.Header.Set(k, v)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respBody,
		}
	}

	a.logger.Info("order accepted",
		"address", address,
		"amount", a.amount,
		"status", resp.StatusCode,
	)
	return nil
}

// Close releases idle connections.
func (a *HTTPAction) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}

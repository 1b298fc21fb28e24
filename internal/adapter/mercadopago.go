package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/config"
	"github.com/indie-cactus/service-reservation/internal/domain"
)

// MercadoPagoAdapter talks to the Mercado Pago REST API. Every call runs
// under the configured client timeout so a slow processor degrades to a
// retryable error instead of hanging checkout.
type MercadoPagoAdapter struct {
	baseURL     string
	accessToken string
	currency    string
	// amountDivisor scales the preference unit price for provider limits.
	amountDivisor int64
	client        *http.Client
	logger        *zap.Logger
}

// NewMercadoPagoAdapter creates an adapter from processor configuration.
func NewMercadoPagoAdapter(cfg config.ProcessorConfig, logger *zap.Logger) *MercadoPagoAdapter {
	return &MercadoPagoAdapter{
		baseURL:       cfg.BaseURL,
		accessToken:   cfg.AccessToken,
		currency:      cfg.Currency,
		amountDivisor: cfg.AmountDivisor,
		client:        &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}
}

type preferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CurrencyID  string  `json:"currency_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferencePayload struct {
	Items             []preferenceItem   `json:"items"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	NotificationURL   string             `json:"notification_url"`
	ExternalReference string             `json:"external_reference"`
	BinaryMode        bool               `json:"binary_mode"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type paymentResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
}

// CreatePreference registers the checkout with Mercado Pago. Quantity is
// always 1 with the full booking amount as the unit price.
func (a *MercadoPagoAdapter) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	payload := preferencePayload{
		Items: []preferenceItem{{
			ID:          req.ExternalReference,
			Title:       req.Title,
			CurrencyID:  a.currency,
			Description: req.Description,
			Quantity:    1,
			UnitPrice:   a.preferenceAmount(req.AmountCents),
		}},
		BackURLs: preferenceBackURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn:        "approved",
		NotificationURL:   req.NotificationURL,
		ExternalReference: req.ExternalReference,
		BinaryMode:        true,
	}

	var resp preferenceResponse
	if err := a.post(ctx, "/checkout/preferences", payload, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" || resp.InitPoint == "" {
		return nil, fmt.Errorf("processor returned an incomplete preference")
	}

	a.logger.Info("preference created",
		zap.String("preference_id", resp.ID),
		zap.String("external_reference", req.ExternalReference),
	)
	return &Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// GetPayment fetches the authoritative payment status, used to verify
// webhook signals whose bodies are untrusted.
func (a *MercadoPagoAdapter) GetPayment(ctx context.Context, paymentID string) (*PaymentStatus, error) {
	var resp paymentResponse
	if err := a.get(ctx, "/v1/payments/"+paymentID, &resp); err != nil {
		return nil, err
	}
	return &PaymentStatus{
		PaymentID:         resp.ID.String(),
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
	}, nil
}

// preferenceAmount converts cents to the processor's major-unit float,
// applying the configured divisor. This is the only place that conversion
// happens.
func (a *MercadoPagoAdapter) preferenceAmount(cents int64) float64 {
	divisor := a.amountDivisor
	if divisor < 1 {
		divisor = 1
	}
	return float64(cents) / 100.0 / float64(divisor)
}

func (a *MercadoPagoAdapter) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal processor payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *MercadoPagoAdapter) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *MercadoPagoAdapter) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+a.accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return &domain.DomainError{
			Err:     domain.ErrUnavailable,
			Message: fmt.Sprintf("processor unreachable: %v", err),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read processor response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return &domain.DomainError{
			Err:     domain.ErrUnavailable,
			Message: fmt.Sprintf("processor error %d: %s", resp.StatusCode, raw),
		}
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("processor rejected request with %d: %s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode processor response: %w", err)
	}
	return nil
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/logger"
	"cabinet_backend/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config - учетные данные магазина и адреса шлюза.
type Config struct {
	ShopID     string
	SecretKey  string
	APIURL     string
	AppBaseURL string
	Currency   string
}

// Client создает исходящие платежи в шлюзе. Локальное состояние не
// изменяет: фиксация счетов и подписок происходит только после
// независимого подтверждения вебхуком.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreatePaymentRequest - параметры одного исходящего платежа.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal
	Description string
	ReturnPath  string
	Metadata    map[string]string
	Receipt     *Receipt
}

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationPayload struct {
	Type      string `json:"type"`
	ReturnURL string `json:"return_url"`
}

type createPaymentPayload struct {
	Amount       amountPayload       `json:"amount"`
	Confirmation confirmationPayload `json:"confirmation"`
	Capture      bool                `json:"capture"`
	Description  string              `json:"description"`
	Metadata     map[string]string   `json:"metadata"`
	Receipt      *Receipt            `json:"receipt,omitempty"`
}

type createPaymentResponse struct {
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

// CreatePayment отправляет запрос на создание платежа и возвращает URL
// подтверждения для редиректа пользователя. Каждый вызов получает свежий
// идемпотентный ключ, чтобы локальный ретрай не создал второй платеж.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (string, error) {
	if c.cfg.ShopID == "" || c.cfg.SecretKey == "" || c.cfg.AppBaseURL == "" {
		return "", apperrors.ErrGatewayNotConfigured
	}

	payload := createPaymentPayload{
		Amount: amountPayload{
			Value:    money.Format(req.Amount),
			Currency: c.cfg.Currency,
		},
		Confirmation: confirmationPayload{
			Type:      "redirect",
			ReturnURL: c.buildReturnURL(req.ReturnPath),
		},
		Capture:     true,
		Description: req.Description,
		Metadata:    req.Metadata,
		Receipt:     req.Receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.NewString())
	httpReq.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", apperrors.ErrGatewayRequest.WithError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.CtxWarn(ctx, "gateway rejected payment creation", "status", resp.StatusCode)
		return "", apperrors.ErrGatewayRequest
	}

	var data createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", apperrors.ErrGatewayProtocol.WithError(err)
	}
	if data.Confirmation.ConfirmationURL == "" {
		return "", apperrors.ErrGatewayProtocol
	}
	return data.Confirmation.ConfirmationURL, nil
}

func (c *Client) buildReturnURL(path string) string {
	base := strings.TrimRight(c.cfg.AppBaseURL, "/")
	return base + "/" + strings.TrimLeft(path, "/")
}

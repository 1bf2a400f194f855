// Package paymentprovider клиент REST API Stripe для оплаты курсов и уроков:
// создание цены, сессии оплаты и получение статуса сессии.
package paymentprovider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lms/internal/config"
	"github.com/magabrotheeeer/lms/internal/models"
)

// Client обращается к Stripe с секретным ключом в basic auth.
type Client struct {
	http       *resty.Client
	currency   string
	successURL string
}

// NewClient создаёт клиента Stripe по настройкам из конфига.
func NewClient(cfg config.Stripe) *Client {
	http := resty.New().
		SetBaseURL(cfg.APIURL).
		SetBasicAuth(cfg.SecretKey, "").
		SetTimeout(cfg.Timeout).
		SetError(&apiError{})
	return &Client{
		http:       http,
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
	}
}

// CreateCheckout создаёт цену на amount и сессию оплаты для неё.
func (c *Client) CreateCheckout(ctx context.Context, amount decimal.Decimal, name string) (*models.CheckoutSession, error) {
	const op = "paymentprovider.CreateCheckout"
	priceID, err := c.createPrice(ctx, amount, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var session checkoutSession
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"success_url":             c.successURL,
			"line_items[0][price]":    priceID,
			"line_items[0][quantity]": "1",
			"mode":                    "payment",
		}).
		SetResult(&session).
		Post("/v1/checkout/sessions")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toModel(session), nil
}

// GetSession возвращает состояние сессии оплаты.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	const op = "paymentprovider.GetSession"
	var session checkoutSession
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", sessionID).
		SetResult(&session).
		Get("/v1/checkout/sessions/{id}")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toModel(session), nil
}

func (c *Client) createPrice(ctx context.Context, amount decimal.Decimal, name string) (string, error) {
	var p price
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"currency":           c.currency,
			"unit_amount":        strconv.FormatInt(UnitAmount(amount), 10),
			"product_data[name]": name,
		}).
		SetResult(&p).
		Post("/v1/prices")
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return p.ID, nil
}

// UnitAmount переводит сумму в минимальные единицы валюты (центы, копейки).
func UnitAmount(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Error.Message != "" {
			return fmt.Errorf("stripe: %s: %s", resp.Status(), e.Error.Message)
		}
		return fmt.Errorf("stripe: unexpected status %s", resp.Status())
	}
	return nil
}

func toModel(s checkoutSession) *models.CheckoutSession {
	return &models.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
	}
}

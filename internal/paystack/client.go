package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
)

const defaultBaseURL = "https://api.paystack.co"

// Client talks to the Paystack REST API for customer and dedicated-account
// creation. It implements app.PaymentAccounts.
type Client struct {
	baseURL       string
	secret        string
	preferredBank string
	httpClient    *http.Client
}

type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds a Paystack client. preferredBank may be empty, in which
// case Paystack picks the provider.
func NewClient(secret, preferredBank string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       defaultBaseURL,
		secret:        secret,
		preferredBank: preferredBank,
		httpClient:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCustomer registers the buyer with Paystack and returns the customer
// handle used for dedicated-account creation.
func (c *Client) CreateCustomer(ctx context.Context, email, firstName, lastName string) (string, error) {
	payload := map[string]string{
		"email":      email,
		"first_name": firstName,
		"last_name":  lastName,
	}

	var resp struct {
		Data struct {
			ID           int64  `json:"id"`
			CustomerCode string `json:"customer_code"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/customer", payload, &resp); err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	if resp.Data.CustomerCode != "" {
		return resp.Data.CustomerCode, nil
	}
	if resp.Data.ID != 0 {
		return strconv.FormatInt(resp.Data.ID, 10), nil
	}
	return "", fmt.Errorf("create customer: response carried no customer handle")
}

// CreateDedicatedAccount provisions a collection account for the customer.
// The account number doubles as the collection reference buyers pay into.
func (c *Client) CreateDedicatedAccount(ctx context.Context, customerID string) (domain.CollectionAccount, error) {
	payload := map[string]string{"customer": customerID}
	if c.preferredBank != "" {
		payload["preferred_bank"] = c.preferredBank
	}

	var resp struct {
		Data struct {
			AccountNumber string `json:"account_number"`
			AccountName   string `json:"account_name"`
			Bank          struct {
				Name string `json:"name"`
			} `json:"bank"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/dedicated_account", payload, &resp); err != nil {
		return domain.CollectionAccount{}, fmt.Errorf("create dedicated account: %w", err)
	}
	if resp.Data.AccountNumber == "" {
		return domain.CollectionAccount{}, fmt.Errorf("create dedicated account: response carried no account number")
	}

	return domain.CollectionAccount{
		Reference:     resp.Data.AccountNumber,
		BankName:      resp.Data.Bank.Name,
		AccountName:   resp.Data.AccountName,
		AccountNumber: resp.Data.AccountNumber,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("paystack %s returned %d: %s", path, resp.StatusCode, snippet)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

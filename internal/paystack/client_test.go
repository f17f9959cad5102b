package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_CreateCustomer(t *testing.T) {
	t.Parallel()

	t.Run("returns the customer code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/customer" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
				t.Errorf("unexpected auth header %q", got)
			}
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req["email"] != "ada@example.com" {
				t.Errorf("unexpected email %q", req["email"])
			}
			_, _ = w.Write([]byte(`{"status": true, "data": {"id": 77, "customer_code": "CUS_abc"}}`))
		}))
		defer srv.Close()

		client := NewClient("sk_test", "", WithBaseURL(srv.URL))
		id, err := client.CreateCustomer(context.Background(), "ada@example.com", "Ada", "Obi")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "CUS_abc" {
			t.Fatalf("expected CUS_abc, got %s", id)
		}
	})

	t.Run("falls back to the numeric id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": true, "data": {"id": 77}}`))
		}))
		defer srv.Close()

		client := NewClient("sk_test", "", WithBaseURL(srv.URL))
		id, err := client.CreateCustomer(context.Background(), "ada@example.com", "Ada", "Obi")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "77" {
			t.Fatalf("expected 77, got %s", id)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"status": false, "message": "invalid key"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient("sk_bad", "", WithBaseURL(srv.URL))
		if _, err := client.CreateCustomer(context.Background(), "ada@example.com", "Ada", "Obi"); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestClient_CreateDedicatedAccount(t *testing.T) {
	t.Parallel()

	t.Run("maps the account payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/dedicated_account" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req["customer"] != "CUS_abc" {
				t.Errorf("unexpected customer %q", req["customer"])
			}
			if req["preferred_bank"] != "fidelity-bank" {
				t.Errorf("unexpected preferred_bank %q", req["preferred_bank"])
			}
			_, _ = w.Write([]byte(`{
				"status": true,
				"data": {
					"account_number": "0123456789",
					"account_name": "Ada Obi",
					"bank": {"name": "Fidelity Bank"}
				}
			}`))
		}))
		defer srv.Close()

		client := NewClient("sk_test", "fidelity-bank", WithBaseURL(srv.URL))
		account, err := client.CreateDedicatedAccount(context.Background(), "CUS_abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if account.Reference != "0123456789" || account.BankName != "Fidelity Bank" || account.AccountName != "Ada Obi" {
			t.Fatalf("unexpected account: %+v", account)
		}
	})

	t.Run("missing account number is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": true, "data": {}}`))
		}))
		defer srv.Close()

		client := NewClient("sk_test", "", WithBaseURL(srv.URL))
		if _, err := client.CreateDedicatedAccount(context.Background(), "CUS_abc"); err == nil {
			t.Fatalf("expected error")
		}
	})
}

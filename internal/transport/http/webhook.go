package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/app"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/paystack"
	"github.com/rs/zerolog"
)

const webhookBodyLimit = 1 << 20 // 1MiB

// PaymentReconciler is the minimal interface needed to settle a payment event.
type PaymentReconciler interface {
	HandlePaymentEvent(ctx context.Context, ev domain.PaymentEvent) (app.ReconcileResult, error)
}

// HandlePaystackWebhook returns the webhook endpoint. The signature check is
// the authentication for this route; nothing reaches the reconciler without a
// valid HMAC over the raw body.
func HandlePaystackWebhook(secret string, svc PaymentReconciler, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "failed to read body")
			return
		}

		if !paystack.VerifySignature(secret, body, r.Header.Get(paystack.SignatureHeader)) {
			log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature mismatch")
			writeError(w, http.StatusBadRequest, codeInvalidSignature, domain.ErrInvalidSignature.Error())
			return
		}

		ev, err := paystack.ParseEvent(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPayload, domain.ErrInvalidPayload.Error())
			return
		}

		res, err := svc.HandlePaymentEvent(r.Context(), ev)
		if err != nil {
			log.Error().Err(err).Str("reference", ev.Reference).Msg("webhook reconciliation failed")
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := webhookResponse{Status: "ok"}
		switch res.Outcome {
		case app.OutcomeExhausted:
			resp.Note = "no voucher"
		case app.OutcomeIgnored:
			resp.Status = "ignored"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type webhookResponse struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

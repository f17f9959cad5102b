package paystack

import (
	"testing"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
)

func TestParseEvent(t *testing.T) {
	t.Parallel()

	t.Run("decodes a charge success with string metadata", func(t *testing.T) {
		body := []byte(`{
			"event": "charge.success",
			"data": {
				"status": "success",
				"reference": "ref-1",
				"metadata": {"chat_id": "12345", "plan": "Daily"}
			}
		}`)

		ev, err := ParseEvent(body)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ev.Succeeded() {
			t.Fatalf("expected success event")
		}
		if ev.Reference != "ref-1" {
			t.Fatalf("expected reference ref-1, got %s", ev.Reference)
		}
		if ev.Metadata.SessionID != 12345 || ev.Metadata.Plan != "Daily" {
			t.Fatalf("unexpected metadata: %+v", ev.Metadata)
		}
	})

	t.Run("decodes numeric chat id", func(t *testing.T) {
		body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","metadata":{"chat_id":98,"plan":"Weekly"}}}`)

		ev, err := ParseEvent(body)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Metadata.SessionID != 98 {
			t.Fatalf("expected session 98, got %d", ev.Metadata.SessionID)
		}
	})

	t.Run("tolerates absent or foreign metadata", func(t *testing.T) {
		for _, body := range []string{
			`{"event":"charge.success","data":{"reference":"ref-1"}}`,
			`{"event":"charge.success","data":{"reference":"ref-1","metadata":{"chat_id":"not-a-number"}}}`,
			`{"event":"charge.success","data":{"reference":"ref-1","metadata":{"chat_id":null}}}`,
		} {
			ev, err := ParseEvent([]byte(body))
			if err != nil {
				t.Fatalf("expected no error for %s, got %v", body, err)
			}
			if ev.Metadata.SessionID != 0 {
				t.Fatalf("expected zero session id for %s", body)
			}
		}
	})

	t.Run("rejects malformed and empty payloads", func(t *testing.T) {
		for _, body := range []string{`not json`, `{}`, `[]`} {
			if _, err := ParseEvent([]byte(body)); err != domain.ErrInvalidPayload {
				t.Fatalf("expected ErrInvalidPayload for %q, got %v", body, err)
			}
		}
	})
}

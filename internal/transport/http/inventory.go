package http

import (
	"context"
	"encoding/json"
	"net/http"
)

// InventoryAdmin is the minimal interface for the operator stock endpoints.
type InventoryAdmin interface {
	Merge(ctx context.Context, seed map[string][]string) (int, error)
	Remaining(ctx context.Context) (map[string]int, error)
}

// HandleInventory returns the operator endpoint for reading remaining stock
// (GET) and merging new voucher codes (POST, idempotent).
func HandleInventory(svc InventoryAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			remaining, err := svc.Remaining(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			if remaining == nil {
				remaining = map[string]int{}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(inventoryResponse{Remaining: remaining})
			return

		case http.MethodPost:
			var seed map[string][]string
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&seed); err != nil || len(seed) == 0 {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			inserted, err := svc.Merge(r.Context(), seed)
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(mergeResponse{Inserted: inserted})
			return

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

type inventoryResponse struct {
	Remaining map[string]int `json:"remaining"`
}

type mergeResponse struct {
	Inserted int `json:"inserted"`
}

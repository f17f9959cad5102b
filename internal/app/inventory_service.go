package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

type VoucherInventory interface {
	Merge(ctx context.Context, seed map[string][]string) (int, error)
	CountRemaining(ctx context.Context) (map[string]int, error)
}

// InventoryService handles out-of-band stock operations: the startup seed
// merge and the operator-facing stock report. Runtime claims go through the
// reconciler, never through here.
type InventoryService struct {
	vouchers VoucherInventory
	log      zerolog.Logger
}

func NewInventoryService(vouchers VoucherInventory, log zerolog.Logger) *InventoryService {
	return &InventoryService{vouchers: vouchers, log: log}
}

// LoadSeedFile merges the voucher seed file (plan -> codes) into the
// inventory. A missing file is not an error: the service can run on whatever
// stock is already in the database.
func (s *InventoryService) LoadSeedFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn().Str("path", path).Msg("voucher seed file not found, skipping")
			return 0, nil
		}
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var seed map[string][]string
	if err := json.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	inserted, err := s.Merge(ctx, seed)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("path", path).Int("inserted", inserted).Msg("voucher seed merged")
	return inserted, nil
}

// Merge inserts new codes, skipping ones already present.
func (s *InventoryService) Merge(ctx context.Context, seed map[string][]string) (int, error) {
	return s.vouchers.Merge(ctx, seed)
}

// Remaining reports unused voucher counts per plan.
func (s *InventoryService) Remaining(ctx context.Context) (map[string]int, error) {
	return s.vouchers.CountRemaining(ctx)
}

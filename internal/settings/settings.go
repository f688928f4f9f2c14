package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

// Settings holds the KPI assumptions used by the dashboard and goal projections.
// Money amounts are in cents; rates are percentages (20 means 20%).
type Settings struct {
	AnnualGCIGoal       int64   `json:"annual_gci_goal"`
	TargetCloseRate     float64 `json:"target_close_rate"`
	AvgBuyerCommission  int64   `json:"avg_buyer_commission"`
	AvgSellerCommission int64   `json:"avg_seller_commission"`
	EstimatedTaxRate    float64 `json:"estimated_tax_rate"`
	DefaultMPG          float64 `json:"default_mpg"`
	DefaultGasPrice     int64   `json:"default_gas_price"`
}

// Defaults returns the assumptions used until the operator saves their own.
func Defaults() Settings {
	return Settings{
		AnnualGCIGoal:       10_000_000,
		TargetCloseRate:     20,
		AvgBuyerCommission:  800_000,
		AvgSellerCommission: 1_000_000,
		EstimatedTaxRate:    30,
		DefaultMPG:          25,
		DefaultGasPrice:     350,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.AnnualGCIGoal < 0:
		return validation.New("annual_gci_goal", "must not be negative")
	case s.TargetCloseRate < 0 || s.TargetCloseRate > 100:
		return validation.New("target_close_rate", "must be between 0 and 100")
	case s.AvgBuyerCommission < 0:
		return validation.New("avg_buyer_commission", "must not be negative")
	case s.AvgSellerCommission < 0:
		return validation.New("avg_seller_commission", "must not be negative")
	case s.EstimatedTaxRate < 0 || s.EstimatedTaxRate > 100:
		return validation.New("estimated_tax_rate", "must be between 0 and 100")
	case s.DefaultMPG < 0:
		return validation.New("default_mpg", "must not be negative")
	case s.DefaultGasPrice < 0:
		return validation.New("default_gas_price", "must not be negative")
	}

	return nil
}

// Service loads and saves the settings record through the persistence provider.
type Service struct {
	store storage.Provider

	mu sync.Mutex
}

func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.store.Load(ctx, storage.Settings)
	if err != nil {
		return Settings{}, fmt.Errorf("loading settings: %w", err)
	}

	if len(payload) == 0 {
		return Defaults(), nil
	}

	st := Defaults()
	if err := json.Unmarshal(payload, &st); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}

	return st, nil
}

func (s *Service) Update(ctx context.Context, st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, map[storage.Collection][]byte{storage.Settings: payload}); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	return nil
}

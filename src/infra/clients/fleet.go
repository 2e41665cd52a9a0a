package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"carrental/src/core/domain"
	"carrental/src/core/ports"
	"carrental/src/infra/config"
)

// FleetClient calls the vehicle fleet service over HTTP.
type FleetClient struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewFleetClient builds a fleet adapter from config.
func NewFleetClient(cfg config.ClientsConfig, log *slog.Logger) *FleetClient {
	return &FleetClient{
		baseURL: strings.TrimRight(cfg.FleetBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

var _ ports.FleetService = (*FleetClient)(nil)

type carPayload struct {
	ID        int64  `json:"id"`
	DailyRate string `json:"daily_rate"`
}

// GetCar fetches a car's rental data. A missing car maps to a not-found error
// so the caller can surface it as such.
func (c *FleetClient) GetCar(ctx context.Context, id domain.CarID) (*ports.Car, error) {
	url := fmt.Sprintf("%s/v1/cars/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fleet service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.NewNotFoundError("car")
	default:
		return nil, fmt.Errorf("fleet service returned status %d", resp.StatusCode)
	}

	var payload carPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode fleet response: %w", err)
	}

	rate, err := domain.NewMoneyFromString(payload.DailyRate)
	if err != nil {
		return nil, fmt.Errorf("fleet returned invalid daily rate %q for car %d", payload.DailyRate, id)
	}

	return &ports.Car{
		ID:        domain.CarID(payload.ID),
		DailyRate: rate,
	}, nil
}

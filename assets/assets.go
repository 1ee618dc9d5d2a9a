// Package assets exposes the renewable-asset listing endpoint consumed by
// the dashboard shell.
package assets

import (
	"context"

	"github.com/firmaboard/firmaboard-go/api"
)

// Asset kinds.
const (
	TypeWind  = "wind"
	TypeSolar = "solar"
)

// Asset statuses reported by the backend.
const (
	StatusOnline      = "Online"
	StatusOffline     = "Offline"
	StatusMaintenance = "Maintenance"
)

// Asset is one monitored renewable-energy asset.
type Asset struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Power    string `json:"power"`
}

// Service lists assets through the shared API client, so requests carry the
// bearer credential and tenant header automatically.
type Service struct {
	client *api.Client
}

// NewService creates an asset service over the shared client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List returns the tenant's assets.
func (s *Service) List(ctx context.Context) ([]Asset, error) {
	var out []Asset
	if err := s.client.Get(ctx, api.EndpointAssets, &out); err != nil {
		return nil, err
	}
	return out, nil
}

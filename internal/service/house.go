// Package service contains the business logic of the Staybook BFF.
// Services validate inputs, orchestrate upstream calls and the cache, and
// leave HTTP concerns to the handler layer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"staybook/internal/cache"
	"staybook/internal/domain"
	"staybook/internal/filter"
)

// HouseAPI is the slice of the upstream client the house service depends on.
type HouseAPI interface {
	SearchHouses(ctx context.Context, token string, p filter.Params) (domain.HousePage, error)
	GetHouse(ctx context.Context, token string, id int64) (domain.House, error)
	ListHostActivities(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error)
}

// HouseService fronts the platform's house and activity endpoints, adding a
// short-TTL cache for anonymous reads. Authenticated reads bypass the cache
// because responses carry per-user state (is_favorite).
type HouseService struct {
	api   HouseAPI
	cache *cache.Cache
	log   *slog.Logger
}

// NewHouseService constructs a HouseService. cache may be nil (disabled).
func NewHouseService(api HouseAPI, c *cache.Cache, log *slog.Logger) *HouseService {
	if log == nil {
		log = slog.Default()
	}
	return &HouseService{api: api, cache: c, log: log}
}

// Search runs a filtered house search.
func (s *HouseService) Search(ctx context.Context, token string, p filter.Params) (domain.HousePage, error) {
	key := "houses:search:" + p.Query(nil).Encode()

	if token == "" {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var page domain.HousePage
			if err := json.Unmarshal(payload, &page); err == nil {
				return page, nil
			}
		}
	}

	page, err := s.api.SearchHouses(ctx, token, p)
	if err != nil {
		return domain.HousePage{}, fmt.Errorf("service.HouseService.Search: %w", err)
	}

	if token == "" {
		if payload, err := json.Marshal(page); err == nil {
			s.cache.Set(ctx, key, payload)
		}
	}
	return page, nil
}

// Get fetches one house by id.
func (s *HouseService) Get(ctx context.Context, token string, id int64) (domain.House, error) {
	key := fmt.Sprintf("houses:detail:%d", id)

	if token == "" {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var h domain.House
			if err := json.Unmarshal(payload, &h); err == nil {
				return h, nil
			}
		}
	}

	h, err := s.api.GetHouse(ctx, token, id)
	if err != nil {
		return domain.House{}, fmt.Errorf("service.HouseService.Get: %w", err)
	}

	if token == "" {
		if payload, err := json.Marshal(h); err == nil {
			s.cache.Set(ctx, key, payload)
		}
	}
	return h, nil
}

// HostActivities lists the activities offered by a house's host.
func (s *HouseService) HostActivities(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error) {
	result, err := s.api.ListHostActivities(ctx, token, hostID, page)
	if err != nil {
		return domain.ActivityPage{}, fmt.Errorf("service.HouseService.HostActivities: %w", err)
	}
	return result, nil
}

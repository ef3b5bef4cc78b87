package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// LocationSuggestion is one autocomplete candidate for a birth location.
type LocationSuggestion struct {
	DisplayName string `json:"displayName"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
}

// LocationService proxies the third-party geocoding API used for birth
// location autocomplete. The integration is best-effort: any upstream
// failure degrades to an empty suggestion list instead of an error.
type LocationService struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

func NewLocationService(baseURL string, logger logging.Logger) *LocationService {
	return &LocationService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search returns up to limit suggestions matching query. It never returns an
// error for upstream failures; those are logged and yield an empty list.
func (s *LocationService) Search(ctx context.Context, query string, limit int) []LocationSuggestion {
	if query == "" {
		return []LocationSuggestion{}
	}
	if limit <= 0 {
		limit = 5
	}

	u := fmt.Sprintf("%s/search?format=json&limit=%d&q=%s", s.baseURL, limit, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		s.logger.Warn(ctx, "building geocoder request", "err", err)
		return []LocationSuggestion{}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn(ctx, "geocoder unreachable", "err", err)
		return []LocationSuggestion{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn(ctx, "geocoder returned non-200", "status", resp.StatusCode)
		return []LocationSuggestion{}
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		s.logger.Warn(ctx, "decoding geocoder response", "err", err)
		return []LocationSuggestion{}
	}

	suggestions := make([]LocationSuggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, LocationSuggestion{
			DisplayName: r.DisplayName,
			Latitude:    r.Lat,
			Longitude:   r.Lon,
		})
	}
	return suggestions
}

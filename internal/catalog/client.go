// Package catalog wraps the third-party movie catalog API. Lookups are
// cached in Redis so like-validation does not hammer the upstream.
package catalog

import (
	"cinematch/backend/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const cacheTTL = 6 * time.Hour

// Movie is the subset of catalog metadata this service cares about.
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
	Store   storage.Storage
}

func NewClient(baseURL, apiKey string, store storage.Storage) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
		Store:   store,
	}
}

// GetMovie fetches one movie by catalog id, returning nil when the catalog
// does not know the id.
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*Movie, error) {
	if cached, err := c.Store.GetCachedMovie(ctx, movieID); err == nil && cached != "" {
		var m Movie
		if err := json.Unmarshal([]byte(cached), &m); err == nil {
			return &m, nil
		}
	}

	url := fmt.Sprintf("%s/movie/%d?api_key=%s", c.BaseURL, movieID, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for movie %d", resp.StatusCode, movieID)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var m Movie
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	if err := c.Store.CacheMovie(ctx, movieID, string(raw), cacheTTL); err != nil {
		log.Printf("WARNING: failed to cache movie %d: %v", movieID, err)
	}
	return &m, nil
}

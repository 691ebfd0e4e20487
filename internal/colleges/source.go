package colleges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pathfinder/internal/normalize"
	"pathfinder/pkg/models"
)

var ErrUnexpectedPayload = errors.New("remote colleges: expected a JSON array")

// Source is implemented by each external college feed.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.College, error)
}

// RemoteSource reads a JSON array of loosely keyed college records from an
// HTTP endpoint and maps each record through the normalizer.
type RemoteSource struct {
	URL    string
	Client *http.Client
}

func NewRemoteSource(url string, timeout time.Duration) *RemoteSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RemoteSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *RemoteSource) Name() string { return "remote:" + s.URL }

func (s *RemoteSource) FetchAll(ctx context.Context) ([]models.College, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch remote colleges: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("remote colleges: status %d", resp.StatusCode)
	}

	var payload any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode remote colleges: %w", err)
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, ErrUnexpectedPayload
	}

	records := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return normalize.NormalizeAll(records), nil
}

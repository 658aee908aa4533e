// Package listing fetches analyses listings from a file or the listing
// service and feeds them into the observable listing state.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rescale/rescale-analyses/internal/config"
	rhttp "github.com/rescale/rescale-analyses/internal/http"
	"github.com/rescale/rescale-analyses/internal/logging"
	"github.com/rescale/rescale-analyses/internal/models"
	"github.com/rescale/rescale-analyses/internal/state"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Source produces one listing page.
type Source interface {
	Fetch(ctx context.Context) (*models.Listing, error)
}

func decode(r io.Reader) (*models.Listing, error) {
	var l models.Listing
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	if l.Analyses == nil {
		l.Analyses = []models.Analysis{}
	}
	return &l, nil
}

// FileSource reads a listing from a JSON file on disk.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) (*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing file: %w", err)
	}
	defer f.Close()
	return decode(f)
}

// HTTPSource fetches GET <BaseURL>/analyses from the listing service.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	client  *retryablehttp.Client
}

// NewHTTPSource creates a source backed by the retrying client from cfg.
func NewHTTPSource(cfg *config.Config, logger *logging.Logger) (*HTTPSource, error) {
	client, err := rhttp.NewRetryClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return NewHTTPSourceWithClient(cfg.ListingURL, cfg.APIKey, client), nil
}

// NewHTTPSourceWithClient creates a source that uses client as-is.
func NewHTTPSourceWithClient(baseURL, apiKey string, client *retryablehttp.Client) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  client,
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (*models.Listing, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/analyses", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Token "+s.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return decode(resp.Body)
}

// StatusError is returned when the listing service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("listing service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("listing service returned %d: %s", e.StatusCode, e.Body)
}

// NewSource picks the configured source. A listing URL wins over a file.
func NewSource(cfg *config.Config, logger *logging.Logger) (Source, error) {
	switch {
	case cfg.ListingURL != "":
		return NewHTTPSource(cfg, logger)
	case cfg.ListingFile != "":
		return FileSource{Path: cfg.ListingFile}, nil
	default:
		return nil, fmt.Errorf("no listing source configured")
	}
}

// Load fetches a listing into st. The state is marked loading for the
// duration of the fetch and ends with either the new items or the error.
func Load(ctx context.Context, src Source, st *state.AnalysisListState) error {
	st.SetLoading(true)

	l, err := src.Fetch(ctx)
	if err != nil {
		st.SetError(err)
		return err
	}

	st.SetItems(l.Analyses)
	return nil
}

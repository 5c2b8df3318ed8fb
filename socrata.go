package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/config"
	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

const (
	// DefaultPageSize is the per-request row limit used when the caller
	// does not ask for one.
	DefaultPageSize = 25000
	// MaxPageSize is the Socrata hard cap on $limit.
	MaxPageSize = 50000

	requestTimeout = 120 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
)

// TransientFetchError reports a page that could not be fetched after retries.
// The fetch aborts instead of silently dropping the page; the caller decides
// whether to rerun.
type TransientFetchError struct {
	Offset int
	Err    error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch error at offset %d: %v", e.Offset, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// Fetcher pages through the Socrata 311 dataset. Configuration is passed in
// at construction; the app token only raises per-client rate limits.
type Fetcher struct {
	baseURL  string
	appToken string
	client   *http.Client
	sleep    func(time.Duration) // swapped out in tests
}

func NewFetcher(cfg config.Config) *Fetcher {
	return &Fetcher{
		baseURL:  fmt.Sprintf("%s/%s.json", cfg.BaseURL, cfg.DatasetID),
		appToken: cfg.AppToken,
		client:   &http.Client{Timeout: requestTimeout},
		sleep:    time.Sleep,
	}
}

// FetchRange downloads every record created in [start, end), page by page,
// ordered by (created_date, unique_key) so the input order downstream is
// stable. Pagination stops when a page comes back shorter than pageSize.
// No deduplication happens here; that is the cleaner's job.
func (f *Fetcher) FetchRange(start, end time.Time, pageSize int) ([]models.RawRecord, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("fetch range: start %s must be before end %s", start, end)
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("fetch range: page size must be between 1 and %d", MaxPageSize)
	}

	var records []models.RawRecord
	offset := 0
	page := 0
	for {
		page++
		rows, err := f.fetchPage(start, end, pageSize, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, rows...)
		log.Printf("fetched page %d (offset %d): %d rows, %d total", page, offset, len(rows), len(records))
		if len(rows) < pageSize {
			break
		}
		offset += pageSize
	}
	return records, nil
}

// FetchYear is FetchRange over one calendar year, the unit the analysis runs on.
func (f *Fetcher) FetchYear(year, pageSize int) ([]models.RawRecord, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return f.FetchRange(start, start.AddDate(1, 0, 0), pageSize)
}

// fetchPage requests a single page, retrying transient failures (network
// errors, 429, 5xx) with exponential backoff before giving up.
func (f *Fetcher) fetchPage(start, end time.Time, limit, offset int) ([]models.RawRecord, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := retryDelay * time.Duration(1<<(attempt-1))
			log.Printf("retrying offset %d in %s (attempt %d/%d)", offset, wait, attempt+1, maxRetries)
			f.sleep(wait)
		}
		rows, retryable, err := f.doRequest(start, end, limit, offset)
		if err == nil {
			return rows, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, &TransientFetchError{Offset: offset, Err: lastErr}
}

func (f *Fetcher) doRequest(start, end time.Time, limit, offset int) (rows []models.RawRecord, retryable bool, err error) {
	const socrataTime = "2006-01-02T15:04:05"
	params := url.Values{}
	params.Set("$where", fmt.Sprintf("created_date between '%s' and '%s'",
		start.Format(socrataTime), end.Add(-time.Second).Format(socrataTime)))
	params.Set("$order", "created_date, unique_key")
	params.Set("$limit", fmt.Sprint(limit))
	params.Set("$offset", fmt.Sprint(offset))

	req, err := http.NewRequest(http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.appToken != "" {
		req.Header.Set("X-App-Token", f.appToken)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("socrata returned %d: %s", resp.StatusCode, string(body))
	default:
		return nil, false, fmt.Errorf("socrata returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, false, fmt.Errorf("decoding page at offset %d: %w", offset, err)
	}
	return rows, false, nil
}

// Package api implements domain.Fetcher against the study-material REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/metrics"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
	breakerName       = "catalogue-api"
)

// Config tunes the client's transport policy.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64
	Burst     int

	// BreakerFailures consecutive failures open the breaker for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         defaultTimeout,
		MaxRetries:      defaultMaxRetries,
		RetryDelay:      defaultRetryDelay,
		RateLimit:       10,
		Burst:           20,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Client implements domain.Fetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient creates a new catalogue API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	metrics.CircuitBreakerState.Set(0)
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Client errors mean the server is up.
		// Cancelled calls say nothing about the server either.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, domain.ErrNotFound) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			var apiErr *domain.APIError
			return errors.As(err, &apiErr) && apiErr.Status < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.Set(float64(to))
		},
	})
	return c
}

// request is one call to the API. body is re-created per attempt.
// Only idempotent requests set retry.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	contentType string
	body        func() (io.Reader, error)
	retry       bool
}

// do runs req through the rate limiter and circuit breaker.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("circuit breaker rejected request", "op", req.op)
		err = fmt.Errorf("%w: %w", domain.ErrServerOffline, err)
	}
	metrics.RecordAPIRequest(req.op, start, err)
	return body, err
}

// doRequest performs an HTTP request to the catalogue API.
// Retryable requests back off exponentially on 5xx server errors.
func (c *Client) doRequest(ctx context.Context, req request) ([]byte, error) {
	reqURL := c.baseURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	retries := 0
	if req.retry {
		retries = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			metrics.APIRetries.Inc()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var body io.Reader
		if req.body != nil {
			b, err := req.body()
			if err != nil {
				return nil, fmt.Errorf("failed to build request body: %w", err)
			}
			body = b
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")
		if req.contentType != "" {
			httpReq.Header.Set("Content-Type", req.contentType)
		}

		c.logger.Debug("api request", "method", req.method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("api request failed", "error", err, "url", reqURL)
			return nil, fmt.Errorf("%w: %w", domain.ErrServerOffline, err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			lastErr = decodeError(resp.StatusCode, respBody)
			c.logger.Warn("api server error",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", retries,
				"path", req.path,
			)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s %s: %w", req.method, req.path, domain.ErrNotFound)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := decodeError(resp.StatusCode, respBody)
			c.logger.Error("api request error", "status", resp.StatusCode, "message", apiErr.Message)
			return nil, apiErr
		}

		return respBody, nil
	}

	c.logger.Error("api request failed after retries", "error", lastErr, "url", reqURL)
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	body, err := c.do(ctx, request{op: op, method: http.MethodGet, path: path, query: query, retry: true})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	body, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		contentType: "application/json",
		body:        func() (io.Reader, error) { return bytes.NewReader(data), nil },
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) FetchBranches(ctx context.Context) ([]domain.Branch, error) {
	var dtos []BranchDTO
	if err := c.get(ctx, "branches", "/branches", nil, &dtos); err != nil {
		return nil, err
	}
	return MapBranches(dtos), nil
}

func (c *Client) FetchRegulations(ctx context.Context) ([]domain.Regulation, error) {
	var dtos []RegulationDTO
	if err := c.get(ctx, "regulations", "/regulations", nil, &dtos); err != nil {
		return nil, err
	}
	return MapRegulations(dtos), nil
}

func (c *Client) FetchYears(ctx context.Context) ([]domain.Year, error) {
	var dtos []YearDTO
	if err := c.get(ctx, "years", "/years", nil, &dtos); err != nil {
		return nil, err
	}
	return MapYears(dtos), nil
}

func (c *Client) FetchSemestersByYear(ctx context.Context, yearID int64) ([]domain.Semester, error) {
	var dtos []SemesterDTO
	path := "/semesters/year/" + strconv.FormatInt(yearID, 10)
	if err := c.get(ctx, "semesters", path, nil, &dtos); err != nil {
		return nil, err
	}
	return MapSemesters(dtos), nil
}

// FetchSubjectsFiltered sends only the filter fields that are set.
func (c *Client) FetchSubjectsFiltered(ctx context.Context, filter domain.SubjectFilter) ([]domain.Subject, error) {
	query := url.Values{}
	setID(query, "branchId", filter.BranchID)
	setID(query, "regulationId", filter.RegulationID)
	setID(query, "subBranchId", filter.SubBranchID)
	setID(query, "yearId", filter.YearID)
	setID(query, "semesterId", filter.SemesterID)

	var dtos []SubjectDTO
	if err := c.get(ctx, "subjects", "/subjects", query, &dtos); err != nil {
		return nil, err
	}
	return MapSubjects(dtos), nil
}

func (c *Client) FetchSubjectByID(ctx context.Context, id int64) (domain.Subject, error) {
	var dto SubjectDTO
	if err := c.get(ctx, "subject", "/subjects/"+strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return domain.Subject{}, err
	}
	return MapSubject(dto), nil
}

func (c *Client) FetchMaterialsBySubject(ctx context.Context, subjectID int64) ([]domain.Material, error) {
	query := url.Values{}
	query.Set("subjectId", strconv.FormatInt(subjectID, 10))

	var dtos []MaterialDTO
	if err := c.get(ctx, "materials", "/materials", query, &dtos); err != nil {
		return nil, err
	}
	return MapMaterials(dtos), nil
}

func (c *Client) FetchMaterialByID(ctx context.Context, id int64) (domain.Material, error) {
	var dto MaterialDTO
	if err := c.get(ctx, "material", "/materials/"+strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return domain.Material{}, err
	}
	return MapMaterial(dto), nil
}

func (c *Client) FetchRecentMaterials(ctx context.Context, limit int) ([]domain.Material, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var dtos []MaterialDTO
	if err := c.get(ctx, "recent_materials", "/materials/recent", query, &dtos); err != nil {
		return nil, err
	}
	return MapMaterials(dtos), nil
}

// FetchSubBranches lists sub-branches, of one branch when branchID is set.
func (c *Client) FetchSubBranches(ctx context.Context, branchID *int64) ([]domain.SubBranch, error) {
	query := url.Values{}
	setID(query, "branchId", branchID)

	var dtos []SubBranchDTO
	if err := c.get(ctx, "sub_branches", "/sub-branches", query, &dtos); err != nil {
		return nil, err
	}
	return MapSubBranches(dtos), nil
}

func (c *Client) Search(ctx context.Context, q string) (domain.SearchResult, error) {
	query := url.Values{}
	query.Set("q", q)

	var dto SearchResultDTO
	if err := c.get(ctx, "search", "/search", query, &dto); err != nil {
		return domain.SearchResult{}, err
	}
	return MapSearchResult(q, dto), nil
}

func (c *Client) CreateBranch(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	var dto BranchDTO
	if err := c.postJSON(ctx, "create_branch", "/branches", req, &dto); err != nil {
		return domain.Branch{}, err
	}
	return MapBranch(dto), nil
}

func (c *Client) CreateRegulation(ctx context.Context, req domain.CreateRegulationRequest) (domain.Regulation, error) {
	var dto RegulationDTO
	if err := c.postJSON(ctx, "create_regulation", "/regulations", req, &dto); err != nil {
		return domain.Regulation{}, err
	}
	return MapRegulation(dto), nil
}

func (c *Client) CreateSubject(ctx context.Context, req domain.CreateSubjectRequest) (domain.Subject, error) {
	var dto SubjectDTO
	if err := c.postJSON(ctx, "create_subject", "/subjects", req, &dto); err != nil {
		return domain.Subject{}, err
	}
	return MapSubject(dto), nil
}

func setID(query url.Values, key string, id *int64) {
	if id != nil && *id > 0 {
		query.Set(key, strconv.FormatInt(*id, 10))
	}
}

var _ domain.Fetcher = (*Client)(nil)

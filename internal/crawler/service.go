// Package crawler composes the page fetcher and metadata extractor
// into the bounded retry loop that produces a typed CrawlResult.
package crawler

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/metrics"
)

// Config controls retry behavior.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Service implements bookmark.Crawler. Failures are classified and
// absorbed into the result; Crawl never returns an error.
type Service struct {
	fetcher    bookmark.Fetcher
	sleeper    bookmark.Sleeper
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewService constructs a Service.
func NewService(fetcher bookmark.Fetcher, sleeper bookmark.Sleeper, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:    fetcher,
		sleeper:    sleeper,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Crawl fetches and extracts metadata for url, retrying up to the
// configured maximum with a fixed delay between attempts. Each attempt
// is independent; no state carries over besides the attempt number.
func (s *Service) Crawl(ctx context.Context, url string) bookmark.CrawlResult {
	for attempt := 1; ; attempt++ {
		s.logger.Debug("crawl attempt",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.maxRetries),
		)

		result, errCode := s.attempt(ctx, url, attempt)
		if errCode == "" {
			metrics.ObserveCrawlAttempt("ok")
			return result
		}
		metrics.ObserveCrawlAttempt(string(errCode))
		s.logger.Warn("crawl attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.String("error_code", string(errCode)),
		)

		if attempt >= s.maxRetries {
			return manualRequired(errCode, s.maxRetries)
		}
		if err := s.sleeper.Sleep(ctx, s.retryDelay); err != nil {
			// Context gone; report what we know instead of retrying.
			return manualRequired(errCode, attempt)
		}
	}
}

func (s *Service) attempt(ctx context.Context, url string, attempt int) (bookmark.CrawlResult, bookmark.CrawlErrorCode) {
	resp, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return bookmark.CrawlResult{}, bookmark.CrawlUnknownError
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return bookmark.CrawlResult{}, bookmark.CrawlFetchFailed
	}

	meta, err := ExtractMetadata(resp.Body)
	if err != nil {
		return bookmark.CrawlResult{}, bookmark.CrawlUnknownError
	}
	if meta.Title == "" {
		return bookmark.CrawlResult{}, bookmark.CrawlTitleNotFound
	}

	return bookmark.CrawlResult{
		Title:        strings.TrimSpace(meta.Title),
		Description:  strings.TrimSpace(meta.Description),
		ThumbnailURL: meta.ThumbnailURL,
		Status:       bookmark.CrawlCompleted,
		Attempt:      attempt,
	}, ""
}

func manualRequired(code bookmark.CrawlErrorCode, attempt int) bookmark.CrawlResult {
	return bookmark.CrawlResult{
		Status:    bookmark.CrawlManualRequired,
		Attempt:   attempt,
		ErrorCode: code,
	}
}

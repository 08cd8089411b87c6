// Package ingest coordinates the crawl → enrich sequence triggered by
// a submitted URL and maps internal failures to the response contract.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/metrics"
)

// User-facing messages for manual-fallback outcomes.
const (
	MsgFetchFailed   = "URL을 열 수 없거나 잘못된 주소입니다. 주소를 다시 확인해 주세요."
	MsgTitleNotFound = "사이트 제목을 추출할 수 없습니다. 보안이 강한 사이트일 수 있습니다."
	MsgUnknownError  = "분석 중 예상치 못한 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	MsgManualDefault = "웹사이트 정보를 자동으로 가져올 수 없습니다."
)

// Data is the payload returned for a completed ingestion.
type Data struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

// Result is the external response contract for one ingestion run.
type Result struct {
	Success   bool                    `json:"success"`
	Status    string                  `json:"status"`
	Attempt   int                     `json:"attempt,omitempty"`
	ErrorCode bookmark.CrawlErrorCode `json:"errorCode,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Data      *Data                   `json:"data,omitempty"`
}

// Orchestrator sequences CrawlerService and AIEnricher. Persistence is
// left to the caller, which saves through the repository once it holds
// the final fields; on manual_required nothing is persisted.
type Orchestrator struct {
	crawler  bookmark.Crawler
	enricher bookmark.Enricher
	logger   *zap.Logger
}

// New constructs an Orchestrator.
func New(crawler bookmark.Crawler, enricher bookmark.Enricher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{crawler: crawler, enricher: enricher, logger: logger}
}

// Process runs one ingestion for url. It is the last line of defense
// for failure containment: a panic anywhere in the sequence is caught
// and reported as an error for the transport layer to map to a generic
// server failure.
func (o *Orchestrator) Process(ctx context.Context, url string) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("ingestion panicked",
				zap.String("url", url),
				zap.Any("panic", rec),
			)
			metrics.ObserveIngest("error")
			result = Result{}
			err = fmt.Errorf("process url: %v", rec)
		}
	}()

	if url == "" {
		return Result{}, bookmark.ErrMissingURL
	}

	crawl := o.crawler.Crawl(ctx, url)
	if crawl.Status == bookmark.CrawlManualRequired {
		metrics.ObserveIngest("manual_required")
		o.logger.Info("crawl requires manual entry",
			zap.String("url", url),
			zap.String("error_code", string(crawl.ErrorCode)),
			zap.Int("attempt", crawl.Attempt),
		)
		return Result{
			Success:   false,
			Status:    string(bookmark.CrawlManualRequired),
			Attempt:   crawl.Attempt,
			ErrorCode: crawl.ErrorCode,
			Message:   MessageFor(crawl.ErrorCode),
		}, nil
	}

	analysis := o.enricher.Analyze(ctx, crawl.Title, crawl.Description)
	metrics.ObserveIngest("completed")

	return Result{
		Success: true,
		Status:  string(bookmark.CrawlCompleted),
		Attempt: crawl.Attempt,
		Data: &Data{
			Title:        crawl.Title,
			Summary:      analysis.Summary,
			Tags:         analysis.Tags,
			ThumbnailURL: crawl.ThumbnailURL,
		},
	}, nil
}

// MessageFor maps a crawl error code to its user-facing message.
func MessageFor(code bookmark.CrawlErrorCode) string {
	switch code {
	case bookmark.CrawlFetchFailed:
		return MsgFetchFailed
	case bookmark.CrawlTitleNotFound:
		return MsgTitleNotFound
	case bookmark.CrawlUnknownError:
		return MsgUnknownError
	default:
		return MsgManualDefault
	}
}

package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
)

type stubCrawler struct {
	result bookmark.CrawlResult
	calls  int
}

func (s *stubCrawler) Crawl(_ context.Context, _ string) bookmark.CrawlResult {
	s.calls++
	return s.result
}

type stubEnricher struct {
	analysis bookmark.AIAnalysis
	calls    int
	panicMsg string
}

func (s *stubEnricher) Analyze(_ context.Context, _, _ string) bookmark.AIAnalysis {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.analysis
}

func TestProcessMissingURL(t *testing.T) {
	crawler := &stubCrawler{}
	enricher := &stubEnricher{}
	orch := New(crawler, enricher, zap.NewNop())

	_, err := orch.Process(context.Background(), "")
	require.ErrorIs(t, err, bookmark.ErrMissingURL)
	assert.Zero(t, crawler.calls)
	assert.Zero(t, enricher.calls)
}

func TestProcessCompleted(t *testing.T) {
	crawler := &stubCrawler{result: bookmark.CrawlResult{
		Title:        "Go Blog",
		Description:  "articles about Go",
		ThumbnailURL: "https://go.dev/og.png",
		Status:       bookmark.CrawlCompleted,
		Attempt:      1,
	}}
	enricher := &stubEnricher{analysis: bookmark.AIAnalysis{
		Summary: "Go 공식 블로그",
		Tags:    []string{"go", "blog"},
	}}
	orch := New(crawler, enricher, zap.NewNop())

	result, err := orch.Process(context.Background(), "https://go.dev")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 1, result.Attempt)
	assert.Empty(t, result.ErrorCode)
	assert.Empty(t, result.Message)
	require.NotNil(t, result.Data)
	assert.Equal(t, "Go Blog", result.Data.Title)
	assert.Equal(t, "Go 공식 블로그", result.Data.Summary)
	assert.Equal(t, []string{"go", "blog"}, result.Data.Tags)
	assert.Equal(t, "https://go.dev/og.png", result.Data.ThumbnailURL)
	assert.Equal(t, 1, enricher.calls)
}

func TestProcessManualRequiredSkipsEnrichment(t *testing.T) {
	tests := []struct {
		name    string
		code    bookmark.CrawlErrorCode
		message string
	}{
		{"fetch failed", bookmark.CrawlFetchFailed, MsgFetchFailed},
		{"title not found", bookmark.CrawlTitleNotFound, MsgTitleNotFound},
		{"unknown error", bookmark.CrawlUnknownError, MsgUnknownError},
		{"unrecognized code", bookmark.CrawlErrorCode("SOMETHING_ELSE"), MsgManualDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crawler := &stubCrawler{result: bookmark.CrawlResult{
				Status:    bookmark.CrawlManualRequired,
				ErrorCode: tt.code,
				Attempt:   3,
			}}
			enricher := &stubEnricher{}
			orch := New(crawler, enricher, zap.NewNop())

			result, err := orch.Process(context.Background(), "https://blocked.example.com")
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Equal(t, "manual_required", result.Status)
			assert.Equal(t, 3, result.Attempt)
			assert.Equal(t, tt.code, result.ErrorCode)
			assert.Equal(t, tt.message, result.Message)
			assert.Nil(t, result.Data)
			assert.Zero(t, enricher.calls, "enricher must not run on manual fallback")
		})
	}
}

func TestProcessRecoversFromPanic(t *testing.T) {
	crawler := &stubCrawler{result: bookmark.CrawlResult{
		Title:   "A Title",
		Status:  bookmark.CrawlCompleted,
		Attempt: 1,
	}}
	enricher := &stubEnricher{panicMsg: "enricher exploded"}
	orch := New(crawler, enricher, zap.NewNop())

	result, err := orch.Process(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, bookmark.ErrMissingURL))
	assert.Contains(t, err.Error(), "enricher exploded")
	assert.Equal(t, Result{}, result)
}

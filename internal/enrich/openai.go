// Package enrich produces AI summaries and tags for crawled metadata.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/metrics"
)

// FailedSummary is the sentinel summary stored when the completion
// call itself fails. Parse failures degrade to an empty summary instead.
const FailedSummary = "분석 실패"

const maxTags = 5

const promptTemplate = `당신은 전문적인 지식 큐레이터입니다. 다음 웹사이트 정보를 바탕으로 핵심 내용을 요약하고 관련 태그를 추출해주세요.
사이트 제목: %s
사이트 설명: %s
[요구사항]
1. 요약(summary)은 한국어로 3줄 이내로 작성하세요.
2. 태그(tags)는 최대 5개까지 키워드만 배열 형식으로 작성하세요.
3. 반드시 JSON 형식으로만 응답하세요.
{
  "summary": "...",
  "tags": ["...", "..."]
}`

// Config controls the completion client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Service implements bookmark.Enricher against an OpenAI-compatible
// completion endpoint. Analyze never fails: every upstream problem is
// mapped to a degraded result so enrichment can never block persistence
// of the crawl metadata.
type Service struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New constructs a Service. BaseURL overrides the default endpoint,
// which also lets tests point the client at a local stub server.
func New(cfg Config, logger *zap.Logger) *Service {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Analyze sends one completion request for the extracted title and
// description and parses the strict-JSON reply.
func (s *Service) Analyze(ctx context.Context, title, description string) bookmark.AIAnalysis {
	prompt := fmt.Sprintf(promptTemplate, title, description)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		s.logger.Warn("completion call failed", zap.Error(err))
		metrics.ObserveEnrichFailure()
		return bookmark.AIAnalysis{Summary: FailedSummary, Tags: []string{}}
	}

	return parseAnalysis(resp.Choices[0].Message.Content, s.logger)
}

// parseAnalysis maps the model reply to an AIAnalysis. Malformed JSON
// or absent fields yield documented degraded defaults, never an error.
func parseAnalysis(content string, logger *zap.Logger) bookmark.AIAnalysis {
	var parsed struct {
		Summary string   `json:"summary"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		logger.Warn("completion reply is not valid JSON", zap.Error(err))
		metrics.ObserveEnrichFailure()
		return bookmark.AIAnalysis{Summary: "", Tags: []string{}}
	}
	if parsed.Tags == nil {
		parsed.Tags = []string{}
	}
	if len(parsed.Tags) > maxTags {
		parsed.Tags = parsed.Tags[:maxTags]
	}
	return bookmark.AIAnalysis{Summary: parsed.Summary, Tags: parsed.Tags}
}

package advisor

import (
	"context"
	"fmt"
	"log"

	"tickerlens/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// HistoryQuerier provides the price series context for a commentary request.
type HistoryQuerier interface {
	GetHistory(ctx context.Context, q domain.Query) (*domain.History, error)
}

// NewsQuerier provides the current headlines for a commentary request.
type NewsQuerier interface {
	GetNews(ctx context.Context) []domain.NewsItem
}

// AdvisorService produces one-shot market commentary for a ticker. It keeps
// no conversation state; every request stands alone.
type AdvisorService struct {
	tracer  trace.Tracer
	llm     LLMClient
	history HistoryQuerier
	news    NewsQuerier
	model   string
}

func NewAdvisorService(
	tracer trace.Tracer,
	llm LLMClient,
	history HistoryQuerier,
	news NewsQuerier,
	model string,
) *AdvisorService {
	return &AdvisorService{
		tracer:  tracer,
		llm:     llm,
		history: history,
		news:    news,
		model:   model,
	}
}

// Insight gathers the series summary and headlines for q and asks the model
// for a short commentary. History being unavailable is not fatal; the prompt
// says so and the model works from whatever context remains.
func (s *AdvisorService) Insight(ctx context.Context, q domain.Query) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.insight")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", q.Ticker))

	var history *domain.History
	h, err := s.history.GetHistory(ctx, q)
	if err != nil {
		log.Printf("advisor: history unavailable for %s: %v", q.Ticker, err)
	} else {
		history = h
	}

	news := s.news.GetNews(ctx)

	systemPrompt := BuildSystemPrompt(FormatMarketContext(history, news))
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(fmt.Sprintf("Give me your read on %s over this period.", q.Ticker)),
	}

	reply, err := s.callLLM(ctx, messages)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advisor unavailable: %w", err)
	}
	return reply, nil
}

func (s *AdvisorService) callLLM(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("llm.message_count", len(messages)),
	)

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

package summarizer

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/errors"
)

const systemPrompt = `You condense reference text into question/answer pairs.
Reply only with lines of the form "Q: <question>" and "A: <answer>", one pair per fact.
Do not add commentary.`

type (
	// Summarizer turns a raw text into newline-delimited Q:/A: lines.
	Summarizer interface {
		Summarize(ctx context.Context, text string) (string, error)
	}

	openaiSummarizer struct {
		client *openai.Client
		model  string
	}
)

var _ Summarizer = (*openaiSummarizer)(nil)

func NewOpenAISummarizer(cfg *config.OpenAIConfig) (Summarizer, error) {
	if cfg.OpenAIApiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "openai api key is empty")
	}

	return &openaiSummarizer{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIApiKey)),
		model:  cfg.SummaryModel,
	}, nil
}

func (s *openaiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	res, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.String(s.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		}),
	})
	if err != nil {
		return "", errors.Wrapf(err, "summarize request failed")
	}
	if len(res.Choices) == 0 {
		return "", errors.Wrapf(errors.ErrInternal, "summarizer returned no choices")
	}

	return res.Choices[0].Message.Content, nil
}

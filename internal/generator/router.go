package generator

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kimhsiao/blogai/internal/errors"
)

// RouterClient calls an OpenAI-compatible chat-completion endpoint.
type RouterClient struct {
	settings Settings
	client   openai.Client
}

// NewRouterClient creates a client for the given settings. A missing token is
// not an error here; Complete reports it on every call so the caller falls back.
func NewRouterClient(s Settings) *RouterClient {
	s = s.withDefaults()
	client := openai.NewClient(
		option.WithAPIKey(s.Token),
		option.WithBaseURL(s.BaseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(s.Timeout),
	)
	return &RouterClient{settings: s, client: client}
}

// Model returns the model name sent with each request.
func (c *RouterClient) Model() string {
	return c.settings.Model
}

// Complete sends the prompt and returns the first choice's message content.
func (c *RouterClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if strings.TrimSpace(c.settings.Token) == "" {
		return "", errors.New(errors.ErrConfiguration, "HF_TOKEN not configured")
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		MaxTokens:   openai.Int(c.settings.MaxTokens),
		Temperature: openai.Float(c.settings.Temperature),
	})
	if err != nil {
		return "", mapAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrResponseFormat, "invalid response format from API: no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New(errors.ErrResponseFormat, "invalid response format from API: empty message")
	}
	return content, nil
}

// mapAPIError turns SDK failures into ExternalServiceError. Non-HTTP failures
// (DNS, refused connection, deadline) carry status 0.
func mapAPIError(err error) error {
	var apierr *openai.Error
	if !stderrors.As(err, &apierr) {
		return &errors.ExternalServiceError{Err: err}
	}
	return &errors.ExternalServiceError{
		StatusCode: apierr.StatusCode,
		Body:       errorBody(apierr),
		Err:        err,
	}
}

func errorBody(apierr *openai.Error) string {
	if apierr.Response != nil && apierr.Response.Body != nil {
		if b, err := io.ReadAll(apierr.Response.Body); err == nil && len(b) > 0 {
			return string(b)
		}
	}
	return apierr.RawJSON()
}

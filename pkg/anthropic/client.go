// Package anthropic wraps the Anthropic SDK as the pipeline's
// generative-text provider.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client defines the generative-text operations used by the pipeline.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*Generation, error)
}

// GenerateRequest is a single prompt to complete.
type GenerateRequest struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature *float64
}

// Generation is the provider output for one request.
type Generation struct {
	Model string
	Text  string
	Usage TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// sdkClient implements Client using the official anthropic-sdk-go.
// Models are tried in order; a model-not-found response moves to the next
// entry, any other failure aborts.
type sdkClient struct {
	client    sdk.Client
	models    []string
	maxTokens int64
}

// NewClient creates an Anthropic-backed client trying the given models in
// order. Extra request options are forwarded to the SDK (base URL override
// in tests).
func NewClient(apiKey string, models []string, maxTokens int64, opts ...option.RequestOption) Client {
	sdkOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &sdkClient{
		client:    sdk.NewClient(sdkOpts...),
		models:    models,
		maxTokens: maxTokens,
	}
}

func (c *sdkClient) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	if len(c.models) == 0 {
		return nil, eris.New("anthropic: no models configured")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	var lastErr error
	for _, model := range c.models {
		params := sdk.MessageNewParams{
			Model:     sdk.Model(model),
			MaxTokens: maxTokens,
			Messages: []sdk.MessageParam{
				sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
			},
		}
		if req.System != "" {
			params.System = []sdk.TextBlockParam{{Text: req.System}}
		}
		if req.Temperature != nil {
			params.Temperature = sdk.Float(*req.Temperature)
		}

		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if isModelNotFound(err) {
				zap.L().Warn("anthropic: model not found, trying next",
					zap.String("model", model),
				)
				lastErr = err
				continue
			}
			return nil, eris.Wrap(err, "anthropic: create message")
		}

		var text strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}

		return &Generation{
			Model: string(msg.Model),
			Text:  text.String(),
			Usage: TokenUsage{
				InputTokens:  msg.Usage.InputTokens,
				OutputTokens: msg.Usage.OutputTokens,
			},
		}, nil
	}

	return nil, eris.Wrap(lastErr, "anthropic: all configured models exhausted")
}

// isModelNotFound reports whether the SDK error is a 404 for the requested
// model rather than a transport or auth failure.
func isModelNotFound(err error) bool {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == http.StatusNotFound
	}
	return false
}

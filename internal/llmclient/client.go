package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"
)

// Client defines the capability every LLM provider adapter exposes to
// the agent manager. Concrete providers (today: an OpenAI-compatible
// chat endpoint) implement this so the decision cycle never depends on
// a specific wire format.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ChatStream(ctx context.Context, req *ChatRequest) (<-chan StreamResponse, error)
	ChatStructured(ctx context.Context, req *ChatRequest, target interface{}) (interface{}, error)
	GetConfig() *Config
	Close() error
}

// OpenAIClient talks to any OpenAI-wire-compatible endpoint (OpenAI
// itself, or a compatible gateway configured via a provider row).
type OpenAIClient struct {
	config       *Config
	openaiClient *openai.Client
	logger       Logger
	retryHandler *RetryHandler
	httpClient   *http.Client
}

// ClientOption configures optional client behaviour.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger       Logger
	retry        *RetryHandler
	httpClient   *http.Client
	openaiClient *openai.Client
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) ClientOption {
	return func(opts *clientOptions) { opts.logger = logger }
}

// WithRetryHandler injects a custom retry handler.
func WithRetryHandler(handler *RetryHandler) ClientOption {
	return func(opts *clientOptions) { opts.retry = handler }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *clientOptions) { opts.httpClient = client }
}

// WithOpenAIClient injects a pre-configured OpenAI client (primarily for testing).
func WithOpenAIClient(client *openai.Client) ClientOption {
	return func(opts *clientOptions) { opts.openaiClient = client }
}

// NewClient constructs a new LLM client using the provided configuration.
func NewClient(cfg *Config, opts ...ClientOption) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, errors.New("llmclient: config cannot be nil")
	}

	clientCfg := cfg.Clone()
	if err := clientCfg.Validate(); err != nil {
		return nil, err
	}

	optState := clientOptions{}
	for _, opt := range opts {
		opt(&optState)
	}

	logger := optState.logger
	if logger == nil {
		logger = NewLogger(clientCfg.LogLevel)
	}

	retryHandler := optState.retry
	if retryHandler == nil {
		retryHandler = NewRetryHandler(RetryConfig{MaxRetries: clientCfg.MaxRetries})
	}

	oaClient := optState.openaiClient
	if oaClient == nil {
		oaOpts := []option.RequestOption{
			option.WithAPIKey(clientCfg.APIKey),
			option.WithBaseURL(clientCfg.BaseURL),
		}
		if clientCfg.Timeout > 0 {
			oaOpts = append(oaOpts, option.WithRequestTimeout(clientCfg.Timeout))
		}
		if optState.httpClient != nil {
			oaOpts = append(oaOpts, option.WithHTTPClient(optState.httpClient))
		}
		clientVal := openai.NewClient(oaOpts...)
		oaClient = &clientVal
	}

	return &OpenAIClient{
		config:       clientCfg,
		openaiClient: oaClient,
		logger:       logger,
		retryHandler: retryHandler,
		httpClient:   optState.httpClient,
	}, nil
}

// Chat performs a single synchronous completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, errors.New("llmclient: request cannot be nil")
	}
	params, modelID, err := c.buildChatParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Info(ctx, "llm chat request", Fields{
		"model":    modelID,
		"messages": len(req.Messages),
	})

	var completion *openai.ChatCompletion
	err = c.retryHandler.Do(ctx, func() error {
		resp, callErr := c.openaiClient.Chat.Completions.New(ctx, params)
		if callErr != nil {
			c.logger.Error(ctx, fmt.Errorf("chat completion failed: %w", callErr), Fields{"model": modelID})
			return callErr
		}
		completion = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := convertCompletion(completion)
	respText := ""
	if len(result.Choices) > 0 {
		respText = strings.TrimSpace(result.Choices[0].Message.Content)
	}
	c.logger.Info(ctx, "llm chat success", Fields{
		"model":             modelID,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     result.Usage.PromptTokens,
		"completion_tokens": result.Usage.CompletionTokens,
		"response":          respText,
	})

	return result, nil
}

// ChatStream initiates a streaming completion call. The returned channel closes once the stream is exhausted.
func (c *OpenAIClient) ChatStream(ctx context.Context, req *ChatRequest) (<-chan StreamResponse, error) {
	if req == nil {
		return nil, errors.New("llmclient: request cannot be nil")
	}
	streamReq := *req
	streamReq.Stream = true
	params, modelID, err := c.buildChatParams(&streamReq)
	if err != nil {
		return nil, err
	}

	stream := c.openaiClient.Chat.Completions.NewStreaming(ctx, params)
	if stream == nil {
		return nil, errors.New("llmclient: streaming not supported")
	}

	out := make(chan StreamResponse)
	go func(s *ssestream.Stream[openai.ChatCompletionChunk]) {
		defer close(out)
		defer s.Close()
		for s.Next() {
			out <- convertChunk(s.Current())
		}
		if err := s.Err(); err != nil {
			c.logger.Error(ctx, fmt.Errorf("stream failed: %w", err), Fields{"model": modelID})
		}
	}(stream)

	return out, nil
}

// ChatStructured enforces structured output using JSON schema and decodes the result into target.
func (c *OpenAIClient) ChatStructured(ctx context.Context, req *ChatRequest, target interface{}) (interface{}, error) {
	if target == nil {
		return nil, errors.New("llmclient: structured target cannot be nil")
	}

	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return nil, errors.New("llmclient: structured target must be a pointer")
	}

	schema, err := GenerateSchema(target)
	if err != nil {
		return nil, err
	}

	strict := true
	format := &ResponseFormat{
		Type:        "json_schema",
		Name:        deriveSchemaName(value),
		Schema:      schema,
		Description: "Structured trading decision response",
		Strict:      &strict,
	}

	structuredReq := *req
	structuredReq.ResponseFormat = format
	resp, err := c.Chat(ctx, &structuredReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llmclient: empty structured response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := ParseStructured(content, target); err != nil {
		c.logger.Error(ctx, fmt.Errorf("parse structured response: %w", err), Fields{"model": resp.Model})
		return nil, err
	}
	return target, nil
}

// GetConfig returns an immutable copy of the client configuration.
func (c *OpenAIClient) GetConfig() *Config { return c.config.Clone() }

// Close releases resources associated with the client.
func (c *OpenAIClient) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
	return nil
}

func (c *OpenAIClient) buildChatParams(req *ChatRequest) (openai.ChatCompletionNewParams, string, error) {
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, "", errors.New("llmclient: request requires at least one message")
	}

	modelAlias := strings.TrimSpace(req.Model)
	if modelAlias == "" {
		modelAlias = c.config.DefaultModel
	}

	modelCfg, ok := c.config.Model(modelAlias)
	if !ok {
		modelCfg = ModelConfig{ModelName: modelAlias}
	}
	modelID := ResolveModelID(modelAlias, modelCfg)

	messageParams, err := buildMessageParams(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, "", err
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: messageParams,
	}

	if rf, ok, err := toResponseFormatParam(req.ResponseFormat); err != nil {
		return openai.ChatCompletionNewParams{}, "", err
	} else if ok {
		params.ResponseFormat = rf
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	} else if modelCfg.Temperature != nil {
		params.Temperature = openai.Float(*modelCfg.Temperature)
	}

	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxTokens))
	} else if modelCfg.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*modelCfg.MaxTokens))
	}

	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	} else if modelCfg.TopP != nil {
		params.TopP = openai.Float(*modelCfg.TopP)
	}

	return params, modelID, nil
}

func buildMessageParams(msgs []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			param := openai.SystemMessage(m.Content)
			if m.Name != "" && param.OfSystem != nil {
				param.OfSystem.Name = openai.String(m.Name)
			}
			result = append(result, param)
		case "developer":
			result = append(result, openai.DeveloperMessage(m.Content))
		case "assistant":
			result = append(result, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		case "tool":
			result = append(result, openai.ToolMessage(m.Content, m.ToolCallID))
		case "function":
			result = append(result, openai.ChatCompletionMessageParamOfFunction(m.Content, m.Name))
		default:
			param := openai.UserMessage(m.Content)
			if m.Name != "" && param.OfUser != nil {
				param.OfUser.Name = openai.String(m.Name)
			}
			result = append(result, param)
		}
	}
	return result, nil
}

func toResponseFormatParam(format *ResponseFormat) (openai.ChatCompletionNewParamsResponseFormatUnion, bool, error) {
	var empty openai.ChatCompletionNewParamsResponseFormatUnion
	if format == nil || strings.EqualFold(format.Type, "text") || format.Type == "" {
		return empty, false, nil
	}

	switch strings.ToLower(format.Type) {
	case "json_object":
		val := shared.NewResponseFormatJSONObjectParam()
		return openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &val}, true, nil
	case "json_schema":
		schema, ok := format.Schema.(map[string]interface{})
		if !ok {
			return empty, false, fmt.Errorf("llmclient: json_schema requires map schema")
		}
		name := format.Name
		if name == "" {
			name = "structured_output"
		}
		jsonSchema := shared.ResponseFormatJSONSchemaJSONSchemaParam{Name: name, Schema: schema}
		if format.Strict != nil {
			jsonSchema.Strict = openai.Bool(*format.Strict)
		}
		if desc := strings.TrimSpace(format.Description); desc != "" {
			jsonSchema.Description = openai.String(desc)
		}
		val := shared.ResponseFormatJSONSchemaParam{JSONSchema: jsonSchema}
		val.Type = val.Type.Default()
		return openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONSchema: &val}, true, nil
	default:
		return empty, false, fmt.Errorf("llmclient: unsupported response format %q", format.Type)
	}
}

func convertCompletion(resp *openai.ChatCompletion) *ChatResponse {
	if resp == nil {
		return nil
	}
	result := &ChatResponse{
		ID:          resp.ID,
		Model:       resp.Model,
		Created:     resp.Created,
		RawJSON:     resp.RawJSON(),
		Fingerprint: resp.SystemFingerprint,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	if resp.ServiceTier != "" {
		result.Tier = string(resp.ServiceTier)
	}
	for _, choice := range resp.Choices {
		result.Choices = append(result.Choices, Choice{
			Index:        int(choice.Index),
			Message:      convertMessage(choice.Message),
			FinishReason: choice.FinishReason,
			ToolCalls:    convertToolCalls(choice.Message.ToolCalls),
		})
	}
	return result
}

func convertChunk(chunk openai.ChatCompletionChunk) StreamResponse {
	resp := StreamResponse{ID: chunk.ID, Model: chunk.Model, Created: chunk.Created}
	if chunk.Usage.TotalTokens > 0 {
		resp.Usage = &Usage{
			PromptTokens:     int(chunk.Usage.PromptTokens),
			CompletionTokens: int(chunk.Usage.CompletionTokens),
			TotalTokens:      int(chunk.Usage.TotalTokens),
		}
	}
	for _, choice := range chunk.Choices {
		var toolCalls []ToolCall
		for _, call := range choice.Delta.ToolCalls {
			toolCalls = append(toolCalls, ToolCall{
				ID: call.ID, Type: string(call.Type),
				Function: FunctionCall{Name: call.Function.Name, Arguments: call.Function.Arguments},
			})
		}
		resp.Choices = append(resp.Choices, StreamChoice{
			Index: int(choice.Index),
			Delta: Delta{
				Role: choice.Delta.Role, Content: choice.Delta.Content, ToolCalls: toolCalls,
			},
			FinishReason: choice.FinishReason,
		})
	}
	return resp
}

func convertMessage(msg openai.ChatCompletionMessage) Message {
	result := Message{Role: string(msg.Role), Content: msg.Content}
	if msg.FunctionCall.Name != "" || msg.FunctionCall.Arguments != "" {
		result.ToolCallID = msg.FunctionCall.Name
	}
	return result
}

func convertToolCalls(calls []openai.ChatCompletionMessageToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		result = append(result, ToolCall{
			ID: call.ID, Type: string(call.Type),
			Function: FunctionCall{Name: call.Function.Name, Arguments: call.Function.Arguments},
		})
	}
	return result
}

func deriveSchemaName(val reflect.Value) string {
	t := val.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

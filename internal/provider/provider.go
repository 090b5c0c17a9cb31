// Package provider is the remote-model boundary of the agent core. The
// core hands a request to a Provider and gets text plus metadata back;
// everything about transport, streaming and retries lives behind this
// interface, built on the Eino chat-model abstraction.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

// Request is one model invocation.
type Request struct {
	Model    string             `json:"model"`
	Messages []*schema.Message  `json:"messages"`
	Tools    []*schema.ToolInfo `json:"tools,omitempty"`
	// Temperature and TopP are pointers so an explicit zero reaches the
	// model instead of being treated as unset.
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
}

// Response is the model's reply.
type Response struct {
	Message  *schema.Message `json:"message"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// Text returns the plain content of the reply.
func (r *Response) Text() string {
	if r.Message == nil {
		return ""
	}
	return r.Message.Content
}

// Provider generates model responses.
type Provider interface {
	// ID returns the provider identifier.
	ID() string

	// GenerateResponse performs one model call.
	GenerateResponse(ctx context.Context, req *Request) (*Response, error)
}

// EinoProvider adapts any Eino tool-calling chat model to Provider.
type EinoProvider struct {
	id        string
	chatModel model.ToolCallingChatModel
}

// NewEinoProvider wraps an Eino chat model.
func NewEinoProvider(id string, chatModel model.ToolCallingChatModel) *EinoProvider {
	return &EinoProvider{id: id, chatModel: chatModel}
}

func (p *EinoProvider) ID() string { return p.id }

func (p *EinoProvider) GenerateResponse(ctx context.Context, req *Request) (*Response, error) {
	chatModel := p.chatModel
	if len(req.Tools) > 0 {
		var err error
		chatModel, err = chatModel.WithTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(float32(*req.Temperature)))
	}
	if req.TopP != nil {
		opts = append(opts, model.WithTopP(float32(*req.TopP)))
	}

	msg, err := chatModel.Generate(ctx, req.Messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	meta := map[string]any{"provider": p.id}
	if req.Model != "" {
		meta["model"] = req.Model
	}
	return &Response{Message: msg, Metadata: meta}, nil
}

// ModelFor resolves the model ID for a session against the injected
// catalog: session override first, then the configured default, then the
// catalog's role default.
func ModelFor(sess *types.ChatSession, cfg *types.Config, catalog types.Catalog) string {
	if sess != nil && sess.ModelConfig != nil && sess.ModelConfig.Model != "" {
		return sess.ModelConfig.Model
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return catalog.DefaultFor("chat")
}

// ToolInfo describes a tool to the model.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ConvertToEinoTools converts tool definitions to the Eino schema.
func ConvertToEinoTools(tools []ToolInfo) []*schema.ToolInfo {
	result := make([]*schema.ToolInfo, len(tools))
	for i, t := range tools {
		var params map[string]*schema.ParameterInfo
		if len(t.Parameters) > 0 {
			params = parseJSONSchemaToParams(t.Parameters)
		}
		result[i] = &schema.ToolInfo{
			Name:        t.Name,
			Desc:        t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		}
	}
	return result
}

// parseJSONSchemaToParams converts a JSON Schema object to Eino
// ParameterInfo values.
func parseJSONSchemaToParams(schemaJSON json.RawMessage) map[string]*schema.ParameterInfo {
	var jsonSchema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schemaJSON, &jsonSchema); err != nil {
		return nil
	}

	requiredSet := make(map[string]bool)
	for _, r := range jsonSchema.Required {
		requiredSet[r] = true
	}

	params := make(map[string]*schema.ParameterInfo)
	for name, prop := range jsonSchema.Properties {
		paramType := schema.String
		switch prop.Type {
		case "integer":
			paramType = schema.Integer
		case "number":
			paramType = schema.Number
		case "boolean":
			paramType = schema.Boolean
		case "array":
			paramType = schema.Array
		case "object":
			paramType = schema.Object
		}
		params[name] = &schema.ParameterInfo{
			Type:     paramType,
			Desc:     prop.Description,
			Required: requiredSet[name],
		}
	}
	return params
}

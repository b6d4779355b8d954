// Package llm 封装内容助手使用的大模型调用，支持 Gemini、OpenAI 与 Anthropic
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Provider interface {
	// Generate 发送请求；设置 Schema 时返回的 Content 是通过校验的 JSON
	Generate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

type Request struct {
	System   string
	Messages []Message
	Schema   *Schema
	// Model 为空时使用 provider 默认模型
	Model       string
	MaxTokens   int
	Temperature float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Schema 结构化输出的 JSON Schema；顶层必须是 object
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type Response struct {
	Content   string
	Model     string
	Usage     Usage
	Truncated bool
}

// Decode 把结构化输出解析到 v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(r.Content)), v); err != nil {
		return &Error{Kind: KindInvalidOutput, Err: fmt.Errorf("decode %T: %w", v, err)}
	}
	return nil
}

func pickModel(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}

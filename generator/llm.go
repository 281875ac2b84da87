package generator

import (
	"context"
	"strings"

	"banner_agent/design"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature *float64
	MaxTokens   int
	MaxRetries  int
}

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System      string
	User        string
	Attachments []Attachment
	History     []Message
	// Schema 非空时为回复的结构化输出约束。
	Schema *OutputSchema
	// Canvas 本次生成的画布尺寸。
	Canvas design.Canvas
}

// Attachment 附在用户文本之后的图片，前面带说明文字。
type Attachment struct {
	Label string
	Image Image
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

// SystemText 返回附加了输出 schema 的系统提示词，供不支持原生 schema 的模型使用。
func (p Prompt) SystemText() string {
	if p.Schema == nil {
		return p.System
	}
	var sb strings.Builder
	sb.WriteString(p.System)
	sb.WriteString("\n\nReturn exactly one JSON object that validates against this JSON Schema. ")
	sb.WriteString("Do not add markdown fences or any text outside the JSON.\n")
	sb.Write(p.Schema.JSON)
	return sb.String()
}

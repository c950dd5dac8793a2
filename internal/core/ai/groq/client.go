package groq

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"safescan/internal/infrastructure/config"
	"safescan/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// strictPreamble 固定的 JSON 輸出約定，包在每一個 prompt 前面。
// 模型會把一個食材名稱拆成兩筆（通常在括號單位處斷開），這裡明確禁止。
const strictPreamble = `You must return ONLY VALID JSON - no text outside JSON, no comments.

ABSOLUTE RULES:
- Every ingredient must be returned as ONE dictionary.
- NEVER split names such as "CAFFEINE(8", "3 mg/100 g)".
  Instead produce: "CAFFEINE (8.3 mg/100g)"
- Every ingredient MUST contain ALL 3 keys:
    "name": string
    "safetyLevel": number
    "info": string
- Do not output trailing commas, duplicate keys, or malformed JSON.
- If unsure, return: {"ingredients":[]}

TASK:
`

// Client Groq Chat Completions 客戶端
type Client struct {
	client *resty.Client
	config *config.GroqConfig
}

// Request 表示 API 請求
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response Groq 響應結構
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// NewClient 創建新的 Groq 客戶端
func NewClient(cfg *config.GroqConfig) *Client {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client: client,
		config: cfg,
	}
}

// SetBaseURL 覆寫 API 端點（測試用）
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// Complete 發送一次 prompt-completion 請求。
// 單次失敗（網路錯誤、非 2xx、信封解析失敗、內容不是 JSON 物件）會整輪重試，
// 每次之間固定間隔 config.RetryDelay，不做指數退避。用盡重試次數後回傳最後一個錯誤。
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	attempts := c.config.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	start := time.Now()
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		content, err := c.completeOnce(ctx, prompt)
		if err == nil {
			common.LogInferenceCall(c.config.Model, time.Since(start), nil)
			return content, nil
		}
		lastErr = err

		common.LogWarn("推論請求失敗，準備重試",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		// context 已取消就不再重試
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	common.LogInferenceCall(c.config.Model, time.Since(start), lastErr)
	return "", fmt.Errorf("inference retries exhausted after %d attempts: %w", attempts, lastErr)
}

// completeOnce 單次請求：信封必須解析、內容必須非空、清理後必須是 JSON 物件
func (c *Client) completeOnce(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Model: c.config.Model,
		Messages: []Message{
			{
				Role:    "user",
				Content: strictPreamble + prompt,
			},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	var response Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&response).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to Groq: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("Groq API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if response.Error != nil {
		return "", fmt.Errorf("Groq API error: %s (%s)", response.Error.Message, response.Error.Type)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in Groq response")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content in Groq response")
	}

	// 清理後必須能解析成 JSON 物件，否則整個 round trip 視為失敗
	sanitized := common.SanitizeJSON(content)
	var probe map[string]interface{}
	if err := common.ParseJSON(sanitized, &probe); err != nil {
		// 模型偶爾漏掉鍵的雙引號，補上後再試一次
		repaired := common.QuoteJSONKeys(sanitized)
		if err2 := common.ParseJSON(repaired, &probe); err2 != nil {
			return "", fmt.Errorf("completion is not a JSON object: %w", err)
		}
		sanitized = repaired
	}

	return sanitized, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

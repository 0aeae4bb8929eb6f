package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Message — одно сообщение в диалоге с моделью.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client реализует клиента текстовой генерации через OpenAI-совместимый API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Configured сообщает, задан ли ключ провайдера.
// Отсутствие ключа — штатная конфигурация: генератор переходит на детерминированный черновик.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// ChatCompletion выполняет один синхронный запрос к chat/completions.
// Повторов нет: при ошибке вызывающий сам решает, что делать дальше.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ai: baseURL не задан")
	}

	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := c.baseURL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	url += "chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("ai: код ответа %d: %v", resp.StatusCode, errorBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ")
	}

	return result.Choices[0].Message.Content, nil
}

var codeFenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON вытаскивает JSON объект из текста ответа модели.
// Модель иногда оборачивает JSON в markdown блок или добавляет пояснения вокруг.
func ExtractJSON(text string) (string, bool) {
	if match := codeFenceRe.FindStringSubmatch(text); len(match) > 1 {
		text = match[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

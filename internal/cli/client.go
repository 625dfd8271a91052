package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/engine"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// CompileResponse — результат удалённой компиляции.
type CompileResponse struct {
	Format   string                   `json:"format"`
	Rendered string                   `json:"rendered"`
	Issues   []domain.ValidationIssue `json:"issues"`
}

// ValidateResponse — результат удалённой проверки ссылок.
type ValidateResponse struct {
	Valid  bool                     `json:"valid"`
	Issues []domain.ValidationIssue `json:"issues"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Flowgraph API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Compile компилирует документ на сервере.
// params — параметры запроса (format, strict, duplicates, merge, display, sink).
func (c *Client) Compile(data []byte, syntax engine.Syntax, params url.Values) (*CompileResponse, error) {
	var resp CompileResponse
	err := c.postDocument("/api/v1/compile", params, data, syntax, &resp)
	return &resp, err
}

// Validate проверяет ссылки на параметры на сервере.
func (c *Client) Validate(data []byte, syntax engine.Syntax) (*ValidateResponse, error) {
	var resp ValidateResponse
	err := c.postDocument("/api/v1/validate", nil, data, syntax, &resp)
	return &resp, err
}

// Resolve возвращает документ с подставленными параметрами.
func (c *Client) Resolve(data []byte, syntax engine.Syntax) (*domain.Document, error) {
	var doc domain.Document
	err := c.postDocument("/api/v1/resolve", nil, data, syntax, &doc)
	return &doc, err
}

// --- HTTP helpers ---

func (c *Client) postDocument(path string, params url.Values, data []byte, syntax engine.Syntax, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType(syntax))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(dr.Data, result)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)

	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error.Code == "" {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if er.Error.Reason != "" {
		return fmt.Errorf("%s (%s): %s", er.Error.Code, er.Error.Reason, er.Error.Message)
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}

// contentType возвращает Content-Type тела для синтаксиса документа.
// Для SyntaxAuto сервер определяет синтаксис по содержимому.
func contentType(syntax engine.Syntax) string {
	switch syntax {
	case engine.SyntaxJSON:
		return "application/json"
	case engine.SyntaxYAML:
		return "application/yaml"
	default:
		return "text/plain"
	}
}

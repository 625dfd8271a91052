package api

import (
	"encoding/json"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/render"
)

// Compile DTOs

// CompileResponse — ответ с графом.
type CompileResponse struct {
	Format   render.Format            `json:"format"`
	Rendered string                   `json:"rendered"`
	Graph    render.GraphJSON         `json:"graph"`
	Issues   []domain.ValidationIssue `json:"issues"`
}

// UploadResponse — ответ на загрузку файла: граф и документ
// с подставленными параметрами.
type UploadResponse struct {
	CompileResponse
	Filename string           `json:"filename"`
	Resolved *domain.Document `json:"resolved"`
}

// ExampleResponse — образец документа, его граф и документ
// с подставленными параметрами.
type ExampleResponse struct {
	CompileResponse
	Document json.RawMessage  `json:"document"`
	Resolved *domain.Document `json:"resolved"`
}

// ValidateResponse — результат проверки ссылок.
type ValidateResponse struct {
	Valid  bool                     `json:"valid"`
	Issues []domain.ValidationIssue `json:"issues"`
}

// Job DTOs

// CreateJobRequest — запрос на асинхронную компиляцию.
type CreateJobRequest struct {
	Document   json.RawMessage `json:"document"`
	Format     string          `json:"format,omitempty"`
	Strict     bool            `json:"strict,omitempty"`
	Duplicates string          `json:"duplicates,omitempty"`
	Merge      string          `json:"merge,omitempty"`
	Display    string          `json:"display,omitempty"`
	ReplyTo    string          `json:"reply_to,omitempty"`
}

// JobResponse — ответ о поставленной задаче.
type JobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/render"
	"github.com/shaiso/Flowgraph/internal/telemetry"
)

// Compile компилирует документ из тела запроса.
// POST /api/v1/compile?format=&strict=&duplicates=&merge=&display=&sink=&raw=
//
// С raw=true в ответе только отрисованный граф с Content-Type формата,
// без JSON обёртки.
func (h *Handler) Compile(w http.ResponseWriter, r *http.Request) {
	opts, format, err := h.requestOptions(r)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	data, err := h.readBody(w, r)
	if HandleCompileError(w, h.logger, err) {
		return
	}

	_, resp, err := h.compile(r, data, engine.SyntaxFromContentType(r.Header.Get("Content-Type")), opts, format)
	if HandleCompileError(w, h.logger, err) {
		return
	}

	if raw, _ := strconv.ParseBool(r.URL.Query().Get("raw")); raw {
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, resp.Rendered)
		return
	}

	Success(w, resp)
}

// Upload компилирует загруженный файл (multipart, поле file).
// POST /api/v1/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	opts, format, err := h.requestOptions(r)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			TooLarge(w, maxErr.Limit)
			return
		}
		BadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	syntax := engine.SyntaxFromFilename(header.Filename)
	if syntax == engine.SyntaxAuto {
		BadRequest(w, "file must have .json, .yaml or .yml extension")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		BadRequest(w, "failed to read uploaded file")
		return
	}

	result, resp, err := h.compile(r, data, syntax, opts, format)
	if HandleCompileError(w, h.logger, err) {
		return
	}

	Success(w, UploadResponse{
		CompileResponse: *resp,
		Filename:        header.Filename,
		Resolved:        result.Resolved,
	})
}

// Example компилирует встроенный образец документа.
// GET /api/v1/example?format=&strict=&duplicates=&merge=&display=&sink=
func (h *Handler) Example(w http.ResponseWriter, r *http.Request) {
	opts, format, err := h.requestOptions(r)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	result, resp, err := h.compile(r, []byte(engine.ExampleDocument), engine.SyntaxJSON, opts, format)
	if HandleCompileError(w, h.logger, err) {
		return
	}

	Success(w, ExampleResponse{
		CompileResponse: *resp,
		Document:        json.RawMessage(engine.ExampleDocument),
		Resolved:        result.Resolved,
	})
}

// Validate проверяет структуру документа и ссылки на параметры.
// POST /api/v1/validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.parseBody(w, r)
	if !ok {
		return
	}

	issues := engine.ValidateReferences(doc)
	Success(w, ValidateResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	})
}

// Resolve возвращает документ с подставленными значениями параметров.
// POST /api/v1/resolve
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.parseBody(w, r)
	if !ok {
		return
	}

	Success(w, engine.Resolve(doc))
}

// compile выполняет компиляцию и отрисовку, записывая метрики и лог.
func (h *Handler) compile(r *http.Request, data []byte, syntax engine.Syntax, opts engine.Options, format render.Format) (*engine.Result, *CompileResponse, error) {
	logger := telemetry.FromContext(r.Context())
	start := time.Now()

	result, resp, err := compileAndRender(data, syntax, opts, format)

	obs := telemetry.CompileObservation{
		Source:   telemetry.SourceHTTP,
		Result:   engine.ErrorCode(err),
		Duration: time.Since(start),
	}
	if err != nil {
		telemetry.ObserveCompile(obs)
		logger.Info("compile rejected", "error_code", obs.Result, "error", err)
		return nil, nil, err
	}

	obs.Nodes = result.Graph.Size()
	obs.Issues = make(map[string]int)
	for _, issue := range result.Issues {
		obs.Issues[string(issue.Kind)]++
	}
	telemetry.ObserveCompile(obs)

	telemetry.WithDocument(logger, result.Resolved.Name).Info("compiled",
		"format", format,
		"nodes", result.Graph.Size(),
		"issues", len(result.Issues),
	)

	return result, resp, nil
}

// compileAndRender компилирует документ и отрисовывает граф.
func compileAndRender(data []byte, syntax engine.Syntax, opts engine.Options, format render.Format) (*engine.Result, *CompileResponse, error) {
	compiler, err := engine.NewCompiler(opts)
	if err != nil {
		return nil, nil, err
	}

	result, err := compiler.CompileBytes(data, syntax)
	if err != nil {
		return nil, nil, err
	}

	rendered, err := render.Render(result.Graph, format)
	if err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", format, err)
	}

	return result, &CompileResponse{
		Format:   format,
		Rendered: string(rendered),
		Graph:    render.NewGraphJSON(result.Graph),
		Issues:   result.Issues,
	}, nil
}

// parseBody читает и разбирает документ. При ошибке ответ уже отправлен.
func (h *Handler) parseBody(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	data, err := h.readBody(w, r)
	if HandleCompileError(w, h.logger, err) {
		return nil, false
	}

	doc, err := engine.Parse(data, engine.SyntaxFromContentType(r.Header.Get("Content-Type")))
	if HandleCompileError(w, h.logger, err) {
		return nil, false
	}

	return doc, true
}

// readBody читает тело запроса с ограничением размера.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, engine.NewValidationError("", "", "failed to read request body", engine.ErrMalformedDocument)
	}
	return data, nil
}

// requestOptions накладывает параметры запроса на настройки по умолчанию.
func (h *Handler) requestOptions(r *http.Request) (engine.Options, render.Format, error) {
	q := r.URL.Query()
	opts := h.opts

	format, err := render.ParseFormat(q.Get("format"))
	if err != nil {
		return opts, "", err
	}

	if v := q.Get("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", fmt.Errorf("invalid strict value %q", v)
		}
		opts.Strict = strict
	}

	if v := q.Get("sink"); v != "" {
		sink, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", fmt.Errorf("invalid sink value %q", v)
		}
		opts.NoTrailingSink = !sink
	}

	if v := q.Get("duplicates"); v != "" {
		if opts.Duplicates, err = engine.ParseDuplicatePolicy(v); err != nil {
			return opts, "", err
		}
	}
	if v := q.Get("merge"); v != "" {
		if opts.Merge, err = engine.ParseMergePolicy(v); err != nil {
			return opts, "", err
		}
	}
	if v := q.Get("display"); v != "" {
		if opts.Display, err = engine.ParseDisplayMode(v); err != nil {
			return opts, "", err
		}
	}

	return opts, format, nil
}

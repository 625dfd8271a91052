package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/mq"
	"github.com/shaiso/Flowgraph/internal/render"
	"github.com/shaiso/Flowgraph/internal/telemetry"
)

// handleCompileRequest обрабатывает сообщение из очереди compile.requests.
//
// Ошибка документа не считается ошибкой обработки: результат FAILED
// публикуется, сообщение подтверждается. Чужой тип сообщения, нечитаемый
// payload и reply_to, ведущий в compile.requests, уходят в DLQ.
// Ошибка публикации возвращает сообщение в очередь.
func (w *Worker) handleCompileRequest(ctx context.Context, msg *mq.Message) error {
	if msg.Type != mq.MessageTypeCompileRequest {
		return mq.Permanent(fmt.Errorf("%w: %s", mq.ErrUnknownMessageType, msg.Type))
	}

	payload, err := mq.ParsePayload[mq.CompileRequestPayload](msg)
	if err != nil {
		return mq.Permanent(fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}

	if err := mq.ValidateReplyTo(payload.ReplyTo); err != nil {
		return mq.Permanent(err)
	}

	if payload.JobID == "" {
		payload.JobID = msg.ID
	}

	result := w.Process(ctx, payload)

	if err := w.publish(ctx, payload.ReplyTo, result); err != nil {
		return fmt.Errorf("publish result for job %s: %w", payload.JobID, err)
	}

	return nil
}

// Process компилирует документ запроса и возвращает результат для публикации.
func (w *Worker) Process(ctx context.Context, payload mq.CompileRequestPayload) mq.CompileResultPayload {
	if payload.JobID == "" {
		payload.JobID = uuid.New().String()
	}

	logger := telemetry.WithJobID(w.logger, payload.JobID)
	start := time.Now()

	result := mq.CompileResultPayload{
		JobID:  payload.JobID,
		Issues: []domain.ValidationIssue{},
	}

	rendered, compiled, err := w.compile(payload)

	obs := telemetry.CompileObservation{
		Source:   telemetry.SourceQueue,
		Result:   engine.ErrorCode(err),
		Duration: time.Since(start),
	}

	if err != nil {
		result.Status = mq.StatusFailed
		result.Error = err.Error()
		result.ErrorCode = engine.ErrorCode(err)
		telemetry.ObserveCompile(obs)

		logger.Warn("compile failed", "error_code", result.ErrorCode, "error", err)
		return result
	}

	result.Status = mq.StatusSucceeded
	result.Format = string(rendered.format)
	result.Rendered = string(rendered.data)
	result.Issues = compiled.Issues

	obs.Nodes = compiled.Graph.Size()
	obs.Issues = countIssues(compiled.Issues)
	telemetry.ObserveCompile(obs)

	telemetry.WithDocument(logger, compiled.Resolved.Name).Info("compile succeeded",
		"format", result.Format,
		"nodes", compiled.Graph.Size(),
		"issues", len(compiled.Issues),
	)

	return result
}

// renderedGraph — отрисованный граф.
type renderedGraph struct {
	format render.Format
	data   []byte
}

// compile выполняет разбор, компиляцию и отрисовку.
func (w *Worker) compile(payload mq.CompileRequestPayload) (*renderedGraph, *engine.Result, error) {
	format, err := render.ParseFormat(payload.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", engine.ErrUnknownOption, err)
	}

	opts, err := w.requestOptions(payload)
	if err != nil {
		return nil, nil, err
	}

	compiler, err := engine.NewCompiler(opts)
	if err != nil {
		return nil, nil, err
	}

	result, err := compiler.CompileBytes(payload.Document, engine.SyntaxJSON)
	if err != nil {
		return nil, nil, err
	}

	data, err := render.Render(result.Graph, format)
	if err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", format, err)
	}

	return &renderedGraph{format: format, data: data}, result, nil
}

// requestOptions накладывает опции запроса на настройки worker.
func (w *Worker) requestOptions(payload mq.CompileRequestPayload) (engine.Options, error) {
	opts := w.opts
	opts.Strict = opts.Strict || payload.Strict

	if payload.Duplicates != "" {
		dup, err := engine.ParseDuplicatePolicy(payload.Duplicates)
		if err != nil {
			return opts, err
		}
		opts.Duplicates = dup
	}

	if payload.Merge != "" {
		merge, err := engine.ParseMergePolicy(payload.Merge)
		if err != nil {
			return opts, err
		}
		opts.Merge = merge
	}

	if payload.Display != "" {
		display, err := engine.ParseDisplayMode(payload.Display)
		if err != nil {
			return opts, err
		}
		opts.Display = display
	}

	return opts, nil
}

// publish отправляет результат.
func (w *Worker) publish(ctx context.Context, replyTo string, result mq.CompileResultPayload) error {
	if w.publisher == nil {
		return ErrNoPublisher
	}
	return w.publisher.PublishCompileResult(ctx, replyTo, result)
}

// countIssues считает проблемы по виду.
func countIssues(issues []domain.ValidationIssue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[string(issue.Kind)]++
	}
	return counts
}

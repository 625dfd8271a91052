package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/mq"
	"github.com/shaiso/Flowgraph/internal/render"
	"github.com/shaiso/Flowgraph/internal/telemetry"
)

// JobStatusQueued — статус задачи, принятой в очередь.
const JobStatusQueued = "QUEUED"

// CreateJob ставит документ в очередь на компиляцию worker'ом.
// POST /api/v1/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		Unavailable(w, "async compilation is disabled")
		return
	}

	var req CreateJobRequest
	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			TooLarge(w, maxErr.Limit)
			return
		}
		BadRequest(w, "invalid JSON body")
		return
	}

	if len(req.Document) == 0 {
		BadRequest(w, "document is required")
		return
	}

	// Документ и опции проверяются до постановки в очередь,
	// чтобы заведомо битые задачи не доходили до worker.
	if _, err := engine.Parse(req.Document, engine.SyntaxJSON); HandleCompileError(w, h.logger, err) {
		return
	}
	if err := validateJobOptions(&req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	jobID := uuid.New().String()
	logger := telemetry.WithJobID(telemetry.FromContext(r.Context()), jobID)

	err := h.publisher.PublishCompileRequest(r.Context(), mq.CompileRequestPayload{
		JobID:      jobID,
		Document:   req.Document,
		Format:     req.Format,
		Strict:     req.Strict,
		Duplicates: req.Duplicates,
		Merge:      req.Merge,
		Display:    req.Display,
		ReplyTo:    req.ReplyTo,
	})
	if err != nil {
		logger.Error("failed to publish compile request", "error", err)
		Unavailable(w, "failed to enqueue job")
		return
	}

	logger.Info("compile job queued", "format", req.Format, "reply_to", req.ReplyTo)

	Accepted(w, JobResponse{
		JobID:  jobID,
		Status: JobStatusQueued,
	})
}

// validateJobOptions проверяет строковые опции задачи.
func validateJobOptions(req *CreateJobRequest) error {
	if _, err := render.ParseFormat(req.Format); err != nil {
		return err
	}
	if _, err := engine.ParseDuplicatePolicy(req.Duplicates); err != nil {
		return err
	}
	if _, err := engine.ParseMergePolicy(req.Merge); err != nil {
		return err
	}
	if _, err := engine.ParseDisplayMode(req.Display); err != nil {
		return err
	}
	return mq.ValidateReplyTo(req.ReplyTo)
}

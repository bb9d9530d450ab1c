package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ruthenian8/dream/middleware"
	"github.com/ruthenian8/dream/models"
	"github.com/ruthenian8/dream/services/convert"
	"github.com/ruthenian8/dream/utils"
	"go.uber.org/zap"
)

// MaxRequestBytes bounds the size of a convert request body
const MaxRequestBytes = 8 << 20

// ConvertRequest is the batch request sent by the dialog agent
type ConvertRequest struct {
	UtterancesHistories            [][]string        `json:"utterances_histories" validate:"required,min=1,dive,min=1"`
	AgentTopics                    []map[string]bool `json:"agent_topics"`
	ApproximateConfidenceIsEnabled *bool             `json:"approximate_confidence_is_enabled,omitempty"`
	EmpiricalCDFIsEnabled          *bool             `json:"empirical_cdf_is_enabled,omitempty"`
	PiecewiseRemapIsEnabled        *bool             `json:"piecewise_remap_is_enabled,omitempty"`
}

// ConvertService defines the pipeline operation used by the handler
type ConvertService interface {
	Convert(ctx context.Context, req *convert.Request) ([]convert.Result, error)
}

// ConvertHandler handles retrieval requests
type ConvertHandler struct {
	service ConvertService
	logger  *zap.Logger
}

// NewConvertHandler creates a new ConvertHandler
func NewConvertHandler(service ConvertService, logger *zap.Logger) *ConvertHandler {
	return &ConvertHandler{
		service: service,
		logger:  logger,
	}
}

// HandleConvert handles POST /convert_reddit.
// The response is a JSON array with one [answers, confidences] pair per
// history, or ["", 0.0] for histories without an answer.
func (h *ConvertHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	if h.service == nil {
		_ = utils.WriteServiceUnavailable(w, "resources not loaded")
		return
	}

	var body ConvertRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = utils.WriteRequestTooLarge(w, "")
			return
		}
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&body); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}
	if body.AgentTopics != nil {
		if err := utils.ValidateEqualLength(len(body.UtterancesHistories), len(body.AgentTopics), "utterances_histories", "agent_topics"); err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
	}

	req := body.toServiceRequest()
	results, err := h.service.Convert(ctx, req)
	if err != nil {
		h.logger.Error("failed to convert batch",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, results); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

func (b *ConvertRequest) toServiceRequest() *convert.Request {
	opts := convert.DefaultOptions()
	if b.ApproximateConfidenceIsEnabled != nil {
		opts.ApproximateConfidence = *b.ApproximateConfidenceIsEnabled
	}
	opts.EmpiricalCDF = b.EmpiricalCDFIsEnabled
	opts.PiecewiseRemap = b.PiecewiseRemapIsEnabled

	items := make([]models.BatchItem, len(b.UtterancesHistories))
	for i, history := range b.UtterancesHistories {
		items[i].History = history
		if i < len(b.AgentTopics) {
			items[i].Topics = b.AgentTopics[i]
		}
	}
	return &convert.Request{Items: items, Options: opts}
}

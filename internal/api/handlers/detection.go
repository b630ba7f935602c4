package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/costwatch/costwatch/internal/api/dto"
	"github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/utils"
	"github.com/costwatch/costwatch/internal/pkg/validator"
	"github.com/costwatch/costwatch/internal/services"
)

// DetectionHandler triggers anomaly detection runs over HTTP
type DetectionHandler struct {
	service   *services.DetectionService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(service *services.DetectionService, log *logger.Logger, val *validator.Validator) *DetectionHandler {
	return &DetectionHandler{service: service, logger: log, validator: val}
}

// Run triggers a detection run for one subscription
func (h *DetectionHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.DetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrors := h.validator.Validate(req); len(validationErrors) > 0 {
		utils.WriteError(w, errors.ValidationError("Invalid detection request", validationErrors))
		return
	}

	summary, err := h.service.Run(r.Context(), services.RunRequest{
		SubscriptionID: req.SubscriptionID,
		DaysBack:       req.DaysBack,
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
			return
		}
		h.logger.ErrorWithErr(err, "Detection run failed")
		utils.WriteError(w, errors.Internal("Anomaly detection failed", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, summary)
}

package handlers

import (
	"net/http"

	"github.com/costwatch/costwatch/internal/api/dto"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/utils"
	"github.com/costwatch/costwatch/internal/services"
)

// AnomalyHandler serves stored anomaly records
type AnomalyHandler struct {
	service *services.AnomalyService
	logger  *logger.Logger
}

// NewAnomalyHandler creates a new anomaly handler
func NewAnomalyHandler(service *services.AnomalyService, log *logger.Logger) *AnomalyHandler {
	return &AnomalyHandler{service: service, logger: log}
}

// List returns stored anomalies with pagination and filtering
func (h *AnomalyHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePaginationParams(r)

	filter := anomaly.Filter{
		SubscriptionID: r.URL.Query().Get("subscription_id"),
		ResourceID:     r.URL.Query().Get("resource_id"),
		Type:           r.URL.Query().Get("type"),
		Severity:       r.URL.Query().Get("severity"),
	}

	anomalies, total, err := h.service.List(r.Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
			return
		}
		utils.WriteError(w, errors.Internal("Failed to list anomalies", err))
		return
	}

	dtos := make([]dto.AnomalyDTO, len(anomalies))
	for i, a := range anomalies {
		dtos[i] = dto.AnomalyDTO{
			ResourceID:         a.ResourceID,
			SubscriptionID:     a.SubscriptionID,
			Date:               a.Date,
			ActualCost:         a.ActualCost,
			ExpectedCost:       a.ExpectedCost,
			Variance:           a.Variance,
			VariancePercentage: a.VariancePercentage,
			ZScore:             a.ZScore,
			AnomalyType:        string(a.AnomalyType),
			Severity:           string(a.Severity),
			Confidence:         a.Confidence,
			DetectedAt:         a.DetectedAt,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, params.Page, params.PageSize, total))
}

// Summary returns stored anomaly counts by severity for a subscription
func (h *AnomalyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	subscriptionID := r.URL.Query().Get("subscription_id")
	if subscriptionID == "" {
		utils.WriteError(w, errors.BadRequest("subscription_id parameter is required"))
		return
	}

	counts, err := h.service.GetSummary(r.Context(), subscriptionID)
	if err != nil {
		utils.WriteError(w, errors.Internal("Failed to get anomaly summary", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, counts)
}

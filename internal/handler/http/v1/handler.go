package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/config"
	"github.com/shenikar/border_conflict_monitor/internal/service"
)

type Handler struct {
	conflictService service.ConflictService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(conflictService service.ConflictService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		conflictService: conflictService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Get current conflict data
// @Description Get the latest snapshot: region statuses, recent incidents and source articles.
// @Description Falls back to a neutral snapshot when nothing has been stored yet.
// @Tags Conflict
// @Produce json
// @Success 200 {object} ConflictDataResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /conflict-data [get]
func (h *Handler) getConflictData(c *gin.Context) {
	log := h.logger.WithField("method", "getConflictData")

	snapshot, err := h.conflictService.GetSnapshot(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get conflict data from service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get conflict data"})
		return
	}

	c.JSON(http.StatusOK, ModelToConflictDataResponse(snapshot))
}

// @Summary Run the pipeline
// @Description Run one news-to-classification pipeline pass synchronously and persist the result.
// @Description Requires API key when API_KEYS is configured.
// @Tags Conflict
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} UpdateResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "Service key missing"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /updateConflictData [get]
func (h *Handler) updateConflictData(c *gin.Context) {
	log := h.logger.WithField("method", "updateConflictData")

	result, err := h.conflictService.Refresh(c.Request.Context())
	if err != nil {
		if apperrors.IsConfiguration(err) {
			log.WithError(err).Warn("Pipeline is not configured")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		log.WithError(err).Error("Failed to update conflict data")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update conflict data"})
		return
	}

	c.JSON(http.StatusOK, UpdateResponse{
		Success:   true,
		Message:   "Conflict data updated successfully",
		Timestamp: result.Snapshot.LastUpdated.UnixMilli(),
		Source:    string(result.Snapshot.Source),
		Persisted: result.Persisted,
	})
}

// @Summary Test external services
// @Description Probe the database, the news search provider and the generative model.
// @Tags System
// @Produce json
// @Success 200 {object} service.ServicesReport
// @Router /test-services [get]
func (h *Handler) testServices(c *gin.Context) {
	c.JSON(http.StatusOK, h.conflictService.TestServices(c.Request.Context()))
}

// @Summary Get relevant news
// @Description Search news for the general conflict query and return relevant articles without calling the model.
// @Tags News
// @Produce json
// @Param limit query int false "Maximum number of articles" minimum(1) maximum(100)
// @Success 200 {object} NewsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 502 {object} ErrorResponse "Search provider failed"
// @Failure 503 {object} ErrorResponse "Service key missing"
// @Router /news [get]
func (h *Handler) getNews(c *gin.Context) {
	var query NewsQuery
	log := h.logger.WithField("method", "getNews")

	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
		return
	}

	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	limit := 0
	if query.Limit != nil {
		limit = *query.Limit
	}

	result, err := h.conflictService.News(c.Request.Context(), limit)
	if err != nil {
		if apperrors.IsConfiguration(err) {
			log.WithError(err).Warn("News search is not configured")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		log.WithError(err).Error("Failed to fetch news from service")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to fetch news. Please try again later."})
		return
	}

	articles := ModelsToArticleResponses(result.Articles)
	c.JSON(http.StatusOK, NewsResponse{
		Status:       "ok",
		Query:        result.Query,
		TotalResults: len(articles),
		Articles:     articles,
	})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

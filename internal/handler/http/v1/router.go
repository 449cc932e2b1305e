package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/conflict-data", h.getConflictData)

	// Ручной запуск конвейера защищен ключом, только если ключи заданы
	update := []gin.HandlerFunc{h.updateConflictData}
	if len(h.cfg.APIKeys) > 0 {
		update = append([]gin.HandlerFunc{APIKeyAuthMiddleware(h.cfg, h.logger)}, update...)
	}
	api.GET("/updateConflictData", update...)

	api.GET("/test-services", h.testServices)
	api.GET("/news", h.getNews)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

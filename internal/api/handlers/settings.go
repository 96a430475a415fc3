package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/store"
)

type settingRequest struct {
	Key   string `json:"key" binding:"required,max=64,printascii"`
	Value string `json:"value" binding:"max=1024"`
}

// GetSettings returns every stored setting.
func GetSettings(settings store.Settings, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := settings.All(c.Request.Context())
		if err != nil {
			log.Errorw("load settings", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": all})
	}
}

// GetSetting returns one setting by key.
func GetSetting(settings store.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		v, ok, err := settings.Get(c.Request.Context(), key)
		switch {
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		case !ok:
			c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		default:
			c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
		}
	}
}

// PutSetting stores an opaque value under a key.
func PutSetting(settings store.Settings, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req settingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := settings.Set(c.Request.Context(), req.Key, req.Value); err != nil {
			log.Errorw("save setting", "key", req.Key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": req.Value})
	}
}

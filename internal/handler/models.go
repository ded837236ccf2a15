package handler

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/config"
	"chatrelay/internal/handler/respond"
)

// ModelHandler 模型目录处理器
type ModelHandler struct {
	models []config.ModelConfig
}

// NewModelHandler 创建模型目录处理器
// 未配置目录时只返回默认模型
func NewModelHandler(cfg *config.AIConfig) *ModelHandler {
	models := cfg.Models
	if len(models) == 0 && cfg.Model != "" {
		models = []config.ModelConfig{{Name: cfg.Model, Default: true}}
	}
	if models == nil {
		models = []config.ModelConfig{}
	}
	return &ModelHandler{models: models}
}

// List 模型目录
// @Summary      模型目录
// @Tags         对话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/models [get]
func (h *ModelHandler) List(c *gin.Context) {
	respond.OK(c, "success", h.models)
}

package controller

import (
	"edulearn_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// Check godoc
// @Summary Health check
// @Description Reports service and database status
// @Tags health
// @Produce  json
// @Success 200 {object} util.Response{data=object} "Healthy"
// @Failure 503 {object} util.Response "Database unreachable"
// @Router /api/health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		util.Error(ctx, 503, "database unreachable")
		return
	}

	util.Success(ctx, gin.H{"status": "up"})
}

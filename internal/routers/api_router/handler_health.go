package api_router

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/process"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string  `json:"status"`     // "healthy" 或 "unhealthy"
	Version    string  `json:"version"`    // 服务版本号
	Uptime     float64 `json:"uptime"`     // 运行时间（秒）
	Database   string  `json:"database"`   // "connected" 或 "error"
	Goroutines int     `json:"goroutines"` // 当前 goroutine 数量
	RSS        uint64  `json:"rss"`        // 常驻内存（字节），获取失败为 0
	CPUPercent float64 `json:"cpuPercent"` // 进程 CPU 使用率
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接和进程资源
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 500 {object} apperrors.AppError
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:     "healthy",
		Version:    h.App.Version().Version,
		Uptime:     time.Since(h.App.StartedAt()).Seconds(),
		Database:   "connected",
		Goroutines: runtime.NumGoroutine(),
	}

	if proc, err := process.NewProcessWithContext(c.Request.Context(), int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfoWithContext(c.Request.Context()); err == nil {
			resp.RSS = mem.RSS
		}
		if cpu, err := proc.CPUPercentWithContext(c.Request.Context()); err == nil {
			resp.CPUPercent = cpu
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.App.Dao.Ping(ctx); err != nil {
		h.logError(ctx, "HealthHandler.Check", err)
		resp.Status = "unhealthy"
		resp.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorServerInternal.WithData(resp))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(resp))
}

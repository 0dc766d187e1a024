package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steveyiyo/tutor-relay/internal/core/prompt"
	"github.com/steveyiyo/tutor-relay/internal/repo/memory"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

var models = []types.ModelInfo{
	{ID: "openai/gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: "OpenAI"},
	{ID: "openai/gpt-4", Name: "GPT-4", Provider: "OpenAI"},
	{ID: "anthropic/claude-3-haiku", Name: "Claude 3 Haiku", Provider: "Anthropic"},
	{ID: "anthropic/claude-3-sonnet", Name: "Claude 3 Sonnet", Provider: "Anthropic"},
	{ID: "google/gemini-pro", Name: "Gemini Pro", Provider: "Google"},
}

type InfoHandler struct {
	Repo    *memory.ConnectionRepo
	Version string
	started time.Time
}

func NewInfoHandler(repo *memory.ConnectionRepo, version string) *InfoHandler {
	return &InfoHandler{Repo: repo, Version: version, started: time.Now()}
}

func (h *InfoHandler) Health(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	c.JSON(http.StatusOK, types.HealthResp{
		Status:        "healthy",
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		UptimeSeconds: time.Since(h.started).Seconds(),
		Memory: types.MemoryStats{
			Alloc:     ms.Alloc,
			Sys:       ms.Sys,
			HeapInUse: ms.HeapInuse,
			NumGC:     ms.NumGC,
		},
		Goroutines:        runtime.NumGoroutine(),
		Version:           h.Version,
		ActiveConnections: h.Repo.Active(),
		TotalConnections:  h.Repo.Total(),
	})
}

func (h *InfoHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, models)
}

func (h *InfoHandler) Personalities(c *gin.Context) {
	c.JSON(http.StatusOK, prompt.Personalities())
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/ratioking/app/cfg"
	"github.com/lysyi3m/ratioking/app/state"
	"github.com/lysyi3m/ratioking/app/tasks"
)

func NewHandler(store state.Store, scheduler tasks.TaskSchedulerInterface,
	newPollTask func() tasks.TaskInterface) *Handler {
	return &Handler{
		store:       store,
		scheduler:   scheduler,
		newPollTask: newPollTask,
		startedAt:   time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"version":   cfg.GetVersion(),
	})
}

// GetStatus exposes the persisted gating state: what was processed
// last, and whether (and how long) a cooldown still suppresses
// submissions.
func (h *Handler) GetStatus(c *gin.Context) {
	st := h.store.Load()
	now := time.Now().UTC().Unix()

	status := map[string]interface{}{
		"last_guid":       st.LastGUID,
		"last_dl_ts":      st.LastActionAt,
		"cooldown_until":  st.CooldownUntil,
		"cooldown_active": now < st.CooldownUntil,
	}

	if st.LastActionAt > 0 {
		status["last_action_at"] = time.Unix(st.LastActionAt, 0).UTC().Format(time.RFC3339)
	}
	if now < st.CooldownUntil {
		status["cooldown_remaining"] = (time.Duration(st.CooldownUntil-now) * time.Second).String()
	}

	appCfg := cfg.Get()
	status["config"] = map[string]interface{}{
		"interval":          (time.Duration(appCfg.IntervalMinutes) * time.Minute).String(),
		"download_speed":    humanize.IBytes(uint64(appCfg.RateBytesPerSec())) + "/s",
		"cooldown_fallback": (time.Duration(appCfg.CooldownFallback) * time.Second).String(),
	}

	c.JSON(http.StatusOK, status)
}

// APIForcePoll enqueues an immediate poll outside the regular schedule.
func (h *Handler) APIForcePoll(c *gin.Context) {
	task := h.newPollTask()
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue forced poll", "error", err)
		c.JSON(http.StatusConflict, gin.H{
			"error":   "poll already in progress",
			"message": "A poll is currently running; try again once it finishes",
		})
		return
	}

	slog.Info("Forced poll enqueued", "task_id", task.GetID())
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "queued",
		"task_id": task.GetID(),
	})
}

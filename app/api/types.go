package api

import (
	"time"

	"github.com/lysyi3m/ratioking/app/state"
	"github.com/lysyi3m/ratioking/app/tasks"
)

type Handler struct {
	store       state.Store
	scheduler   tasks.TaskSchedulerInterface
	newPollTask func() tasks.TaskInterface
	startedAt   time.Time
}

// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"finportal/internal/common/config"
	"finportal/internal/common/logger"
)

// WorkerGroup keeps the job workers opened by the worker manager so they can
// be closed together on shutdown.
type WorkerGroup struct {
	client zbc.Client
	log    logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerGroup(client zbc.Client, log logger.Logger) *WorkerGroup {
	return &WorkerGroup{
		client:  client,
		log:     log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in config.
// It reports whether a worker was opened.
func (g *WorkerGroup) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		g.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jw := g.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		PollInterval(time.Second).
		Open()

	g.mu.Lock()
	g.workers[taskType] = jw
	g.mu.Unlock()

	g.log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// TaskTypes lists the task types with an open worker.
func (g *WorkerGroup) TaskTypes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, 0, len(g.workers))
	for taskType := range g.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs to finish.
func (g *WorkerGroup) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for taskType, jw := range g.workers {
		jw.Close()
		jw.AwaitClose()
		g.log.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	g.workers = make(map[string]worker.JobWorker)
}

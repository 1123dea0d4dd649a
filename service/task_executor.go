package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"porthound/config"
	"porthound/models"
	"porthound/scanner"

	"github.com/go-redis/redis/v8"
)

// runningScans maps task ID hex -> context.CancelFunc for scans in
// flight, so a cancel request reaches the scheduler.
var runningScans sync.Map

func cancelRunningScan(taskID string) {
	if v, ok := runningScans.Load(taskID); ok {
		v.(context.CancelFunc)()
	}
}

// TaskExecutor pulls scan tasks off the queue and runs them.
type TaskExecutor struct {
	taskService   *TaskService
	resultService *ResultService
	workers       int
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

func NewTaskExecutor(workers int) *TaskExecutor {
	if workers <= 0 {
		workers = 5
	}
	return &TaskExecutor{
		taskService:   NewTaskService(),
		resultService: NewResultService(),
		workers:       workers,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the worker goroutines
func (e *TaskExecutor) Start() {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	log.Printf("[TaskExecutor] Started %d workers", e.workers)
}

// Stop shuts the executor down and waits for in-flight tasks
func (e *TaskExecutor) Stop() {
	close(e.stopCh)
	e.wg.Wait()
	log.Println("[TaskExecutor] Stopped")
}

func (e *TaskExecutor) worker(id int) {
	defer e.wg.Done()
	workerID := fmt.Sprintf("worker-%d", id)
	log.Printf("[%s] Worker started, listening for scan tasks", workerID)

	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		task, err := e.taskService.DequeueTask()
		if err != nil {
			if err != redis.Nil {
				log.Printf("[%s] Dequeue error: %v", workerID, err)
			}
			time.Sleep(1 * time.Second)
			continue
		}

		if task == nil {
			time.Sleep(1 * time.Second)
			continue
		}

		// A task cancelled while still queued is skipped.
		if task.Status != models.TaskStatusPending {
			continue
		}

		log.Printf("[%s] Processing task: %s", workerID, task.ID.Hex())
		e.processTask(task)
	}
}

func (e *TaskExecutor) processTask(task *models.Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TaskExecutor] Panic in task %s: %v", task.ID.Hex(), r)
			_ = e.taskService.FailTask(task.ID.Hex(), "internal error")
		}
	}()

	taskID := task.ID.Hex()
	startedAt := time.Now()

	if err := e.taskService.UpdateTask(taskID, map[string]interface{}{
		"status":     models.TaskStatusRunning,
		"started_at": startedAt,
	}); err != nil {
		log.Printf("[TaskExecutor] Failed to mark task %s running: %v", taskID, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	runningScans.Store(taskID, cancel)
	defer func() {
		runningScans.Delete(taskID)
		cancel()
	}()

	report, err := e.runScan(ctx, task)
	if err != nil {
		_ = e.taskService.FailTask(taskID, err.Error())
		return
	}

	stats := summarize(report)
	progress := 100
	if stats.NotScanned > 0 {
		done := stats.TotalUnits - stats.NotScanned
		progress = done * 100 / stats.TotalUnits
	}
	_ = e.taskService.UpdateTaskProgress(taskID, progress, stats)

	doc, err := e.resultService.SaveReport(report, task.ID, startedAt, time.Now())
	if err != nil {
		_ = e.taskService.FailTask(taskID, err.Error())
		return
	}

	status := models.TaskStatusCompleted
	if stats.NotScanned > 0 {
		// Cancellation reached the scheduler: keep what was probed,
		// record the task itself as cancelled.
		status = models.TaskStatusCancelled
	}
	_ = e.taskService.UpdateTask(taskID, map[string]interface{}{
		"status":       status,
		"completed_at": time.Now(),
	})

	log.Printf("[TaskExecutor] Task %s finished: %d open ports, report %s",
		taskID, stats.OpenPorts, doc.ScanID)
}

func (e *TaskExecutor) runScan(ctx context.Context, task *models.Task) (*models.ScanReport, error) {
	cfg := config.GetConfig()

	opts := scanner.Options{
		Concurrency:   task.Config.Concurrency,
		ServiceDetect: task.Config.ServiceDetect,
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Scanner.Concurrency
	}
	if task.Config.TimeoutMS > 0 {
		opts.Timeout = time.Duration(task.Config.TimeoutMS) * time.Millisecond
	} else {
		opts.Timeout = time.Duration(cfg.Scanner.TimeoutMS) * time.Millisecond
	}
	opts.BannerTimeout = time.Duration(cfg.Scanner.BannerTimeoutMS) * time.Millisecond

	portExpr := task.PortExpr
	if portExpr == "" {
		portExpr = cfg.Scanner.DefaultPorts
	}

	engine := scanner.NewEngine(opts, scanner.NewIdentifier(config.GetServiceDB()))
	return engine.Scan(ctx, task.HostExpr, portExpr)
}

func summarize(report *models.ScanReport) models.TaskStats {
	stats := models.TaskStats{TotalUnits: len(report.Entries)}
	for _, e := range report.Entries {
		switch e.State {
		case models.StateOpen:
			stats.OpenPorts++
		case models.StateClosed:
			stats.ClosedPorts++
		case models.StateFiltered:
			stats.Filtered++
		case models.StateNotScanned:
			stats.NotScanned++
		}
	}
	return stats
}

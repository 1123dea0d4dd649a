package api

import (
	"strconv"

	"porthound/models"
	"porthound/scanner"
	"porthound/service"
	"porthound/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	taskService   *service.TaskService
	resultService *service.ResultService
}

func NewTaskHandler() *TaskHandler {
	return &TaskHandler{
		taskService:   service.NewTaskService(),
		resultService: service.NewResultService(),
	}
}

func parsePagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// Create creates a scan task and queues it
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		Description   string `json:"description"`
		Hosts         string `json:"hosts" binding:"required"`
		Ports         string `json:"ports"`
		ServiceDetect bool   `json:"service_detect"`
		Concurrency   int    `json:"concurrency"`
		TimeoutMS     int    `json:"timeout_ms"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// Validate target expressions up front so a bad spec fails the
	// request, not the queued task.
	if req.Ports != "" {
		if _, _, err := scanner.Resolve(req.Hosts, req.Ports); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	} else if _, err := scanner.ResolveHosts(req.Hosts); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	task := &models.Task{
		Name:        req.Name,
		Description: req.Description,
		HostExpr:    req.Hosts,
		PortExpr:    req.Ports,
		Config: models.TaskConfig{
			ServiceDetect: req.ServiceDetect,
			Concurrency:   req.Concurrency,
			TimeoutMS:     req.TimeoutMS,
		},
	}

	if userID, exists := c.Get("user_id"); exists {
		if objID, err := primitive.ObjectIDFromHex(userID.(string)); err == nil {
			task.CreatedBy = objID
		}
	}

	if err := h.taskService.CreateTask(task); err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.Success(c, task)
}

// List lists tasks
// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	page, size := parsePagination(c)
	status := c.Query("status")

	tasks, total, err := h.taskService.ListTasks(status, page, size)
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.SuccessWithPagination(c, tasks, total, page, size)
}

// Get retrieves a task
// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.taskService.GetTaskByID(c.Param("id"))
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.Success(c, task)
}

// Cancel cancels a pending or running task
// POST /api/tasks/:id/cancel
func (h *TaskHandler) Cancel(c *gin.Context) {
	if err := h.taskService.CancelTask(c.Param("id")); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.SuccessWithMessage(c, "task cancelled", nil)
}

// Delete deletes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Param("id")); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.SuccessWithMessage(c, "task deleted", nil)
}

// GetReport retrieves the latest report of a task
// GET /api/tasks/:id/report
func (h *TaskHandler) GetReport(c *gin.Context) {
	doc, err := h.resultService.GetReportByTaskID(c.Param("id"))
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.Success(c, doc)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		taskService: services.NewTaskService(db),
	}
}

// Create creates a personal or project task
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, task)
}

// GetByID returns a single task the caller may view
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(middleware.GetUserID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, task)
}

// ListProject returns the project tasks visible to the caller
// GET /api/projects/:id/tasks
func (h *TaskHandler) ListProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListProject(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, tasks)
}

// Board returns the project's visible tasks grouped by status
// GET /api/projects/:id/board
func (h *TaskHandler) Board(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	board, err := h.taskService.Board(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, board)
}

// ListPersonal returns the caller's personal tasks
// GET /api/tasks/personal
func (h *TaskHandler) ListPersonal(c *gin.Context) {
	tasks, err := h.taskService.ListPersonal(middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, tasks)
}

// Update edits a task
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, task)
}

// Assign changes a task's assignee
// PUT /api/tasks/:id/assignee
func (h *TaskHandler) Assign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Assign(middleware.GetUserID(c), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, task)
}

// Delete removes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(middleware.GetUserID(c), id); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "task deleted"})
}

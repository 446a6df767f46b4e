package services

import (
	"errors"
	"time"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
)

// TaskService performs task reads and writes behind the permission
// evaluator. Roles are resolved fresh for every operation and re-checked
// immediately before each mutating write, never cached across requests.
type TaskService struct {
	db    *gorm.DB
	roles *RoleService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, roles: NewRoleService(db)}
}

type CreateTaskRequest struct {
	ProjectID   *uint      `json:"project_id"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	AssigneeID  *uint      `json:"assignee_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

type AssignTaskRequest struct {
	AssigneeID *uint `json:"assignee_id"` // nil clears the assignee
}

func validTaskStatus(s string) bool {
	switch s {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
		return true
	}
	return false
}

func validTaskPriority(p string) bool {
	switch p {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return true
	}
	return false
}

func taskFacts(t *models.Task) *authz.TaskFacts {
	return &authz.TaskFacts{
		ProjectID:  t.ProjectID,
		CreatorID:  t.CreatorID,
		AssigneeID: t.AssigneeID,
	}
}

// getTask loads a task or reports NotFound.
func (s *TaskService) getTask(taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("task not found")
	}
	if err != nil {
		return nil, storageError(err)
	}
	return &task, nil
}

// Create creates a personal task (nil project) or a project task after the
// evaluator approves the actor's role and initial assignee.
func (s *TaskService) Create(actorID uint, req *CreateTaskRequest) (*models.Task, error) {
	if req.Status == "" {
		req.Status = models.TaskStatusTodo
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if !validTaskStatus(req.Status) {
		return nil, ValidationError("invalid status, must be 'todo', 'in_progress' or 'done'")
	}
	if !validTaskPriority(req.Priority) {
		return nil, ValidationError("invalid priority, must be 'low', 'medium' or 'high'")
	}

	if req.ProjectID != nil {
		role, err := s.roles.Resolve(actorID, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if !authz.CanCreateTask(role, actorID, req.AssigneeID) {
			return nil, PermissionDenied("you may not create this task in the project")
		}

		var project models.Project
		if err := s.db.First(&project, *req.ProjectID).Error; err != nil {
			return nil, storageError(err)
		}
		if project.Archived {
			return nil, InvalidState("project is archived")
		}
	} else if req.AssigneeID != nil && *req.AssigneeID != actorID {
		return nil, ValidationError("a personal task cannot be assigned to another user")
	}

	task := models.Task{
		ProjectID:   req.ProjectID,
		CreatorID:   actorID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, storageError(err)
	}
	return &task, nil
}

// Get returns a task the actor may view.
func (s *TaskService) Get(actorID, taskID uint) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	role := authz.RoleNone
	if task.ProjectID != nil {
		role, err = s.roles.Resolve(actorID, *task.ProjectID)
		if err != nil {
			return nil, err
		}
	}

	ok, err := authz.CanViewTask(role, actorID, taskFacts(task))
	if err != nil {
		return nil, storageError(err)
	}
	if !ok {
		return nil, PermissionDenied("you do not have access to this task")
	}

	s.db.Preload("Creator").Preload("Assignee").First(task, task.ID)
	return task, nil
}

// ListProject returns the project tasks visible to the actor. The role is
// resolved exactly once and the whole result set is filtered in one pass.
func (s *TaskService) ListProject(actorID, projectID uint) ([]models.Task, error) {
	role, err := s.roles.Resolve(actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanProject(role, authz.ViewProject) {
		return nil, PermissionDenied("you do not have access to this project")
	}

	var tasks []models.Task
	if err := s.db.Where("project_id = ?", projectID).
		Preload("Creator").
		Preload("Assignee").
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, storageError(err)
	}

	return authz.FilterTasks(role, actorID, tasks), nil
}

// Board groups a project's visible tasks by status.
func (s *TaskService) Board(actorID, projectID uint) (map[string][]models.Task, error) {
	tasks, err := s.ListProject(actorID, projectID)
	if err != nil {
		return nil, err
	}

	board := map[string][]models.Task{
		models.TaskStatusTodo:       {},
		models.TaskStatusInProgress: {},
		models.TaskStatusDone:       {},
	}
	for _, t := range tasks {
		board[t.Status] = append(board[t.Status], t)
	}
	return board, nil
}

// ListPersonal returns the actor's personal tasks.
func (s *TaskService) ListPersonal(actorID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("project_id IS NULL AND creator_id = ?", actorID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, storageError(err)
	}
	return tasks, nil
}

// Update edits task fields after re-checking edit permission against the
// current membership state.
func (s *TaskService) Update(actorID, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	role := authz.RoleNone
	if task.ProjectID != nil {
		role, err = s.roles.Resolve(actorID, *task.ProjectID)
		if err != nil {
			return nil, err
		}
	}

	ok, err := authz.CanEditTask(role, actorID, taskFacts(task))
	if err != nil {
		return nil, storageError(err)
	}
	if !ok {
		return nil, PermissionDenied("you may not edit this task")
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		if *req.Title == "" {
			return nil, ValidationError("task title cannot be empty")
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !validTaskStatus(*req.Status) {
			return nil, ValidationError("invalid status, must be 'todo', 'in_progress' or 'done'")
		}
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		if !validTaskPriority(*req.Priority) {
			return nil, ValidationError("invalid priority, must be 'low', 'medium' or 'high'")
		}
		updates["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, storageError(err)
		}
	}
	return task, nil
}

// Assign changes the task's assignee (nil clears it). Owners and
// collaborators may pick anyone; a member may only keep their own task on
// themselves or unassigned.
func (s *TaskService) Assign(actorID, taskID uint, req *AssignTaskRequest) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	role := authz.RoleNone
	if task.ProjectID != nil {
		role, err = s.roles.Resolve(actorID, *task.ProjectID)
		if err != nil {
			return nil, err
		}
	}

	ok, err := authz.CanAssignTask(role, actorID, taskFacts(task), req.AssigneeID)
	if err != nil {
		return nil, storageError(err)
	}
	if !ok {
		return nil, PermissionDenied("you may not change this task's assignee")
	}

	if err := s.db.Model(task).Update("assignee_id", req.AssigneeID).Error; err != nil {
		return nil, storageError(err)
	}
	task.AssigneeID = req.AssigneeID
	return task, nil
}

// Delete removes a task. Members may never delete project tasks, not even
// their own.
func (s *TaskService) Delete(actorID, taskID uint) error {
	task, err := s.getTask(taskID)
	if err != nil {
		return err
	}

	role := authz.RoleNone
	if task.ProjectID != nil {
		role, err = s.roles.Resolve(actorID, *task.ProjectID)
		if err != nil {
			return err
		}
	}

	ok, err := authz.CanDeleteTask(role, actorID, taskFacts(task))
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return PermissionDenied("you may not delete this task")
	}

	if err := s.db.Delete(task).Error; err != nil {
		return storageError(err)
	}
	return nil
}

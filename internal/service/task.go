package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/internal/event"
	"github.com/teamboardhq/teamboard/internal/repository"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// TaskService implements the business logic for task operations.
type TaskService struct {
	taskRepo         repository.TaskRepository
	projectRepo      repository.ProjectRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	producer         *event.Producer
	logger           *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:         taskRepo,
		projectRepo:      projectRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		producer:         producer,
		logger:           logger,
	}
}

// CreateTaskInput holds the parameters for creating a task.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    string
	AssigneeID  string
	DueDate     *time.Time
}

// UpdateTaskInput holds the parameters for updating a task.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *string
	DueDate     *time.Time
}

// Create creates a new task under an existing project. Assigning a user at
// creation time notifies them like a later assignment would.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("task title is required")
	}
	if input.ProjectID == "" {
		return nil, apperrors.InvalidInput("project id is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !domain.IsValidTaskPriority(priority) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid task priority %q", priority))
	}

	if _, err := s.projectRepo.GetByID(ctx, input.ProjectID); err != nil {
		return nil, fmt.Errorf("get project for task: %w", err)
	}

	if input.AssigneeID != "" {
		if _, err := s.userRepo.GetByID(ctx, input.AssigneeID); err != nil {
			return nil, fmt.Errorf("get assignee: %w", err)
		}
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if task.AssigneeID != "" {
		s.notifyAssignee(ctx, task)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.String("task_id", task.ID),
		slog.String("project_id", task.ProjectID),
	)

	return task, nil
}

// Get retrieves a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListByProject returns a project's tasks with pagination.
func (s *TaskService) ListByProject(ctx context.Context, projectID string, params pagination.Params) (*pagination.Result[domain.Task], error) {
	tasks, total, err := s.taskRepo.ListByProjectID(ctx, projectID, params)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	result := pagination.NewResult(tasks, total, params)
	return &result, nil
}

// Update modifies a task. Changing the assignee persists a notification row
// for the new assignee and publishes a task.assigned event.
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task for update: %w", err)
	}

	previousAssignee := task.AssigneeID

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("task title must not be empty")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !domain.IsValidTaskStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid task status %q", *input.Status))
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !domain.IsValidTaskPriority(*input.Priority) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid task priority %q", *input.Priority))
		}
		task.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID != "" {
			if _, err := s.userRepo.GetByID(ctx, *input.AssigneeID); err != nil {
				return nil, fmt.Errorf("get assignee: %w", err)
			}
		}
		task.AssigneeID = *input.AssigneeID
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if task.AssigneeID != "" && task.AssigneeID != previousAssignee {
		s.notifyAssignee(ctx, task)
	}

	s.logger.InfoContext(ctx, "task updated",
		slog.String("task_id", task.ID),
	)

	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "task deleted",
		slog.String("task_id", id),
	)

	return nil
}

// notifyAssignee persists an in-app notification for the task's assignee
// and publishes a task.assigned event. Neither failure blocks the request.
func (s *TaskService) notifyAssignee(ctx context.Context, task *domain.Task) {
	notification := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    task.AssigneeID,
		Type:      domain.NotificationTaskAssigned,
		Title:     "Task assigned",
		Body:      fmt.Sprintf("You have been assigned the task %q.", task.Title),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.ErrorContext(ctx, "failed to create task-assigned notification",
			slog.String("task_id", task.ID),
			slog.String("assignee_id", task.AssigneeID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishTaskAssigned(ctx, task); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish task.assigned event",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
	}
}

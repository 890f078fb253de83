package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/events"
	"github.com/spec-kit/mes-portal/internal/repository"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// ImportService runs standards-import tasks. Each task shows up as a todo
// item while it is open and removes itself when completed.
type ImportService struct {
	todos      repository.TodoRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewImportService constructs the service.
func NewImportService(todos repository.TodoRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{todos: todos, dispatcher: dispatcher, logger: logger}
}

// Start registers an import task for fileName.
func (s *ImportService) Start(ctx context.Context, actor Actor, fileName string) (*domain.TodoItem, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, apperrors.NewValidationError("file_name required", nil)
	}
	roles := []domain.Role{domain.RoleAdmin}
	if actor.Role != "" && actor.Role != domain.RoleAdmin {
		roles = append(roles, actor.Role)
	}
	item := &domain.TodoItem{
		ID:           "IMP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		Title:        "标准导入：" + fileName,
		Tag:          "导入",
		ComponentKey: domain.ComponentKeyStandardImport,
		Roles:        roles,
		Status:       domain.TodoStatusPending,
		RawData:      map[string]any{"file_name": fileName, "requested_by": actor.UserID},
	}
	if err := s.todos.Upsert(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventImportStarted, actor, item.ID, fileName)
	s.logger.Info("import started", zap.String("task_id", item.ID), zap.String("file", fileName))
	return item, nil
}

// Complete finishes an import task and removes its todo item.
func (s *ImportService) Complete(ctx context.Context, actor Actor, taskID string) error {
	item, err := s.todos.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("import task", map[string]any{"task_id": taskID})
		}
		return apperrors.MapError(err)
	}
	if item.ComponentKey != domain.ComponentKeyStandardImport {
		return apperrors.NewNotFound("import task", map[string]any{"task_id": taskID})
	}
	if err := s.todos.Remove(ctx, taskID); err != nil {
		return apperrors.MapError(err)
	}
	fileName := ""
	if raw, ok := item.RawData.(map[string]any); ok {
		fileName, _ = raw["file_name"].(string)
	}
	s.publish(ctx, events.EventImportCompleted, actor, taskID, fileName)
	s.logger.Info("import completed", zap.String("task_id", taskID))
	return nil
}

func (s *ImportService) publish(ctx context.Context, eventType events.EventType, actor Actor, taskID, fileName string) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     eventActor(actor),
		Timestamp: time.Now(),
		Payload:   events.ImportPayload{TaskID: taskID, FileName: fileName},
	})
	if err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

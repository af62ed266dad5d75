package tasksvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/usersvc"
	"gorm.io/gorm"
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusArchived   Status = "ARCHIVED"
)

// Statuses lists every status in display order. Any status may move to any
// other; there is no transition graph.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusArchived}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string        `gorm:"type:varchar(200);not null" json:"title"`
	Description *string       `gorm:"type:varchar(2000)" json:"description"`
	Status      Status        `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	User        *usersvc.User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// BeforeCreate assigns a random identifier to tasks inserted without one.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Patch carries the fields of a partial update. Nil fields are left
// untouched. SetDescription marks the description as supplied, so a nil
// Description with SetDescription clears it.
type Patch struct {
	Title          *string
	Description    *string
	SetDescription bool
	Status         *Status
}

func (p Patch) Empty() bool {
	return p.Title == nil && !p.SetDescription && p.Status == nil
}

type TaskRepository interface {
	Create(ctx context.Context, task Task) (Task, error)
	// FindAll returns the user's tasks newest first. An empty status
	// returns every task of the user.
	FindAll(ctx context.Context, userID uuid.UUID, status Status) ([]Task, error)
	Find(ctx context.Context, taskID uuid.UUID) (Task, error)
	Update(ctx context.Context, taskID uuid.UUID, p Patch) (Task, error)
	Archive(ctx context.Context, taskID uuid.UUID) (Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTaskNotFound    = errors.New("task not found")
	ErrForbidden       = errors.New("task belongs to another user")
)

package taskendpoint

import (
	"errors"
	"strings"
	"testing"

	"github.com/ichigozero/tasktracker/tasksvc"
	"github.com/ichigozero/tasktracker/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func statusptr(s tasksvc.Status) *tasksvc.Status { return &s }

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "want *validation.Error, got %v", err)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestCreateTaskRequestValidation(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.NoError(t, validation.Struct(CreateTaskRequest{Title: "T1"}))
	})
	assert.NoError(t, validation.Struct(CreateTaskRequest{
		Title:       "   ",
		Description: strptr(""),
		Status:      statusptr(tasksvc.StatusDone),
	}))

	err := validation.Struct(CreateTaskRequest{
		Title:       strings.Repeat("x", 201),
		Description: strptr(strings.Repeat("x", 2001)),
		Status:      statusptr("BLOCKED"),
	})
	assert.ElementsMatch(t, []string{"title", "description", "status"}, fields(t, err))

	err = validation.Struct(CreateTaskRequest{})
	assert.Equal(t, []string{"title"}, fields(t, err))
}

func TestUpdateTaskRequestValidation(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.NoError(t, validation.Struct(UpdateTaskRequest{}))
	})
	assert.NoError(t, validation.Struct(UpdateTaskRequest{
		Title:          strptr("T2"),
		Description:    strptr(""),
		SetDescription: true,
		Status:         statusptr(tasksvc.StatusArchived),
	}))

	err := validation.Struct(UpdateTaskRequest{Title: strptr(""), Status: statusptr("")})
	assert.ElementsMatch(t, []string{"title", "status"}, fields(t, err))

	err = validation.Struct(UpdateTaskRequest{Description: strptr(strings.Repeat("x", 2001))})
	assert.Equal(t, []string{"description"}, fields(t, err))
}

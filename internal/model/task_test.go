package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scraper/internal/model"
)

func TestTaskCanTransitionTo(t *testing.T) {
	tests := map[string]struct {
		from   model.TaskStatus
		to     model.TaskStatus
		expErr bool
	}{
		"Pending to running should be allowed.": {
			from: model.TaskStatusPending,
			to:   model.TaskStatusRunning,
		},

		"Running to completed should be allowed.": {
			from: model.TaskStatusRunning,
			to:   model.TaskStatusCompleted,
		},

		"Running to failed should be allowed.": {
			from: model.TaskStatusRunning,
			to:   model.TaskStatusFailed,
		},

		"Completed to running should be allowed (new run).": {
			from: model.TaskStatusCompleted,
			to:   model.TaskStatusRunning,
		},

		"Failed to running should be allowed (new run).": {
			from: model.TaskStatusFailed,
			to:   model.TaskStatusRunning,
		},

		"Pending to completed should fail.": {
			from:   model.TaskStatusPending,
			to:     model.TaskStatusCompleted,
			expErr: true,
		},

		"Running to pending should fail.": {
			from:   model.TaskStatusRunning,
			to:     model.TaskStatusPending,
			expErr: true,
		},

		"Completed to failed should fail.": {
			from:   model.TaskStatusCompleted,
			to:     model.TaskStatusFailed,
			expErr: true,
		},

		"Unknown status should fail.": {
			from:   model.TaskStatusRunning,
			to:     model.TaskStatus("unknown"),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			task := model.Task{ID: "t1", Status: test.from}
			err := task.CanTransitionTo(test.to)

			if test.expErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	assert.False(t, model.TaskStatusPending.IsTerminal())
	assert.False(t, model.TaskStatusRunning.IsTerminal())
	assert.True(t, model.TaskStatusCompleted.IsTerminal())
	assert.True(t, model.TaskStatusFailed.IsTerminal())
}

func TestTaskStatusSourceStatuses(t *testing.T) {
	tests := map[string]struct {
		status     model.TaskStatus
		expSources []model.TaskStatus
	}{
		"Running can be reached from pending and finished tasks.": {
			status:     model.TaskStatusRunning,
			expSources: []model.TaskStatus{model.TaskStatusPending, model.TaskStatusCompleted, model.TaskStatusFailed},
		},
		"Completed can only be reached from running.": {
			status:     model.TaskStatusCompleted,
			expSources: []model.TaskStatus{model.TaskStatusRunning},
		},
		"Failed can only be reached from running.": {
			status:     model.TaskStatusFailed,
			expSources: []model.TaskStatus{model.TaskStatusRunning},
		},
		"Pending can't be reached.": {
			status:     model.TaskStatusPending,
			expSources: []model.TaskStatus{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expSources, test.status.SourceStatuses())
		})
	}
}

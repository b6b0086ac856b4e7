package list_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/app/list"
	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config list.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: list.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
			expErr: false,
		},
		"missing repository should fail": {
			config: list.ServiceConfig{
				Logger: log.Noop,
			},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: list.ServiceConfig{
				Repository: &storagemock.MockRepository{},
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := list.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "id2", URL: "https://b.example.com", Status: model.TaskStatusPending, CreatedAt: createdAt.Add(time.Second)},
		{ID: "id1", URL: "https://a.example.com", Status: model.TaskStatusCompleted, CreatedAt: createdAt},
	}

	tests := map[string]struct {
		mock        func(m *storagemock.MockRepository)
		req         list.Request
		expResponse *list.Response
		expErr      bool
	}{
		"an empty request should use the default page and size": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, 0, 20).Once().Return(tasks, 2, nil)
			},
			req:         list.Request{},
			expResponse: &list.Response{Tasks: tasks, Total: 2, Page: 1, Size: 20},
		},
		"a page should be translated to an offset": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, 20, 10).Once().Return([]model.Task{}, 2, nil)
			},
			req:         list.Request{Page: 3, Size: 10},
			expResponse: &list.Response{Tasks: []model.Task{}, Total: 2, Page: 3, Size: 10},
		},
		"the max size should be accepted": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, 0, 100).Once().Return(tasks, 2, nil)
			},
			req:         list.Request{Page: 1, Size: 100},
			expResponse: &list.Response{Tasks: tasks, Total: 2, Page: 1, Size: 100},
		},
		"a negative page should fail": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    list.Request{Page: -1},
			expErr: true,
		},
		"a size above the max should fail": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    list.Request{Size: 101},
			expErr: true,
		},
		"a negative size should fail": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    list.Request{Size: -5},
			expErr: true,
		},
		"repository error should propagate": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, 0, 20).Once().Return(nil, 0, fmt.Errorf("db error"))
			},
			req:    list.Request{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mockRepo := &storagemock.MockRepository{}
			test.mock(mockRepo)

			svc, err := list.NewService(list.ServiceConfig{
				Repository: mockRepo,
				Logger:     log.Noop,
			})
			require.NoError(err)

			resp, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				assert.Equal(test.expResponse, resp)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

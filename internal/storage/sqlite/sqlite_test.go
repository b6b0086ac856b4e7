package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/storage/sqlite"
)

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func ptr(s string) *string { return &s }

func TestNewRepositoryConfig(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryTasks(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *sqlite.Repository)
	}{
		"Creating a task should store it as pending.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				task, err := repo.CreateTask(ctx, "http://example.com")
				require.NoError(t, err)
				assert.Equal(t, model.TaskStatusPending, task.Status)

				got, err := repo.GetTask(ctx, task.ID)
				require.NoError(t, err)
				assert.Equal(t, *task, *got)
			},
		},

		"Creating a task without URL should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				_, err := repo.CreateTask(ctx, "")
				assert.True(t, errors.Is(err, model.ErrNotValid))
			},
		},

		"Getting a missing task should return not found.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				_, err := repo.GetTask(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Status transitions should follow the task lifecycle.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				task, err := repo.CreateTask(ctx, "http://example.com")
				require.NoError(t, err)

				_, err = repo.SetTaskStatus(ctx, task.ID, model.TaskStatusCompleted)
				assert.True(t, errors.Is(err, model.ErrNotValid))

				_, err = repo.SetTaskStatus(ctx, task.ID, model.TaskStatusRunning)
				require.NoError(t, err)
				_, err = repo.SetTaskStatus(ctx, task.ID, model.TaskStatusFailed)
				require.NoError(t, err)

				got, err := repo.GetTask(ctx, task.ID)
				require.NoError(t, err)
				assert.Equal(t, model.TaskStatusFailed, got.Status)
				assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

				// A finished task can be run again.
				_, err = repo.SetTaskStatus(ctx, task.ID, model.TaskStatusRunning)
				require.NoError(t, err)
			},
		},

		"Setting the status of a missing task should return not found.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				_, err := repo.SetTaskStatus(ctx, "missing", model.TaskStatusRunning)
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Listing tasks should paginate newest first with the total count.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				var ids []string
				for _, u := range []string{"http://a", "http://b", "http://c"} {
					task, err := repo.CreateTask(ctx, u)
					require.NoError(t, err)
					ids = append(ids, task.ID)
				}

				tasks, total, err := repo.ListTasks(ctx, 0, 2)
				require.NoError(t, err)
				assert.Equal(t, 3, total)
				require.Len(t, tasks, 2)
				assert.Equal(t, ids[2], tasks[0].ID)
				assert.Equal(t, ids[1], tasks[1].ID)

				tasks, _, err = repo.ListTasks(ctx, 2, 2)
				require.NoError(t, err)
				require.Len(t, tasks, 1)
				assert.Equal(t, ids[0], tasks[0].ID)

				tasks, _, err = repo.ListTasks(ctx, 10, 2)
				require.NoError(t, err)
				assert.Empty(t, tasks)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.actions(context.Background(), t, newRepo(t))
		})
	}
}

func TestRepositoryResults(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *sqlite.Repository)
	}{
		"Attaching a result to a missing task should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				_, err := repo.AttachResult(ctx, model.NewResult{TaskID: "missing"})
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Attached results should keep their data and be returned newest first.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				task, err := repo.CreateTask(ctx, "http://example.com")
				require.NoError(t, err)

				first, err := repo.AttachResult(ctx, model.NewResult{
					TaskID:    task.ID,
					ErrorInfo: ptr("Renderer Error: launch failed"),
				})
				require.NoError(t, err)
				assert.Nil(t, first.Data)
				assert.Nil(t, first.OCRText)

				second, err := repo.AttachResult(ctx, model.NewResult{
					TaskID: task.ID,
					Data: map[string]any{
						"url":         "http://example.com",
						"raw_title":   "Example",
						"links":       []any{map[string]any{"text": "a", "href": "/a"}},
						"links_count": 1,
					},
					ScreenshotRef: ptr("/tmp/shot.png"),
					OCRText:       ptr("hello"),
				})
				require.NoError(t, err)
				assert.Equal(t, "Example", second.Data["raw_title"])
				// JSON numbers come back as float64.
				assert.Equal(t, float64(1), second.Data["links_count"])
				assert.Equal(t, "/tmp/shot.png", *second.ScreenshotRef)
				assert.Equal(t, "hello", *second.OCRText)

				results, err := repo.GetResultsForTask(ctx, task.ID)
				require.NoError(t, err)
				require.Len(t, results, 2)
				assert.Equal(t, second.ID, results[0].ID)
				assert.Equal(t, first.ID, results[1].ID)
				assert.Equal(t, "Renderer Error: launch failed", *results[1].ErrorInfo)
			},
		},

		"A task without results should return an empty list.": {
			actions: func(ctx context.Context, t *testing.T, repo *sqlite.Repository) {
				results, err := repo.GetResultsForTask(ctx, "any")
				require.NoError(t, err)
				assert.Empty(t, results)

				_, err = repo.GetResult(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.actions(context.Background(), t, newRepo(t))
		})
	}
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "scraper.db")

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: path})
	require.NoError(err)
	task, err := repo.CreateTask(ctx, "http://example.com")
	require.NoError(err)
	_, err = repo.AttachResult(ctx, model.NewResult{TaskID: task.ID, OCRText: ptr("text")})
	require.NoError(err)
	require.NoError(repo.Close())

	repo, err = sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: path})
	require.NoError(err)
	defer repo.Close()

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(err)
	assert.Equal(t, task.URL, got.URL)

	results, err := repo.GetResultsForTask(ctx, task.ID)
	require.NoError(err)
	assert.Len(t, results, 1)
}

func TestRepositoryConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	const runs = 40
	errs := make(chan error, runs)
	var wg sync.WaitGroup
	for range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- func() error {
				task, err := repo.CreateTask(ctx, "http://example.com")
				if err != nil {
					return err
				}
				if _, err := repo.SetTaskStatus(ctx, task.ID, model.TaskStatusRunning); err != nil {
					return err
				}
				if _, err := repo.AttachResult(ctx, model.NewResult{TaskID: task.ID, OCRText: ptr("text")}); err != nil {
					return err
				}
				_, err = repo.SetTaskStatus(ctx, task.ID, model.TaskStatusCompleted)
				return err
			}()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	tasks, total, err := repo.ListTasks(ctx, 0, runs)
	require.NoError(t, err)
	assert.Equal(t, runs, total)
	for _, task := range tasks {
		assert.Equal(t, model.TaskStatusCompleted, task.Status)
	}
}

func TestRepositoryConcurrentTransitionsOnSameTask(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	task, err := repo.CreateTask(ctx, "http://example.com")
	require.NoError(t, err)

	const workers = 20
	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.SetTaskStatus(ctx, task.ID, model.TaskStatusRunning)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, model.ErrNotValid):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %s", err)
			}
		}()
	}
	wg.Wait()

	// Only one worker can move the task out of pending.
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())
}

func TestRepositoryReset(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	repo := newRepo(t)

	version, err := repo.SchemaVersion(ctx)
	require.NoError(err)
	assert.Equal(uint(1), version)

	task, err := repo.CreateTask(ctx, "http://example.com")
	require.NoError(err)
	_, err = repo.AttachResult(ctx, model.NewResult{TaskID: task.ID, OCRText: ptr("text")})
	require.NoError(err)

	require.NoError(repo.Reset(ctx))

	_, total, err := repo.ListTasks(ctx, 0, 10)
	require.NoError(err)
	assert.Equal(0, total)
	_, err = repo.GetTask(ctx, task.ID)
	assert.True(errors.Is(err, model.ErrNotFound))

	version, err = repo.SchemaVersion(ctx)
	require.NoError(err)
	assert.Equal(uint(1), version)

	// The database is usable after a reset.
	_, err = repo.CreateTask(ctx, "http://example.com")
	require.NoError(err)
}

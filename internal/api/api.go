// Package api is the HTTP transport of the scraper use cases.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slok/scraper/internal/app/list"
	"github.com/slok/scraper/internal/app/scrape"
	"github.com/slok/scraper/internal/app/status"
	"github.com/slok/scraper/internal/app/submit"
	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/printer"
)

// ScrapeService runs the scraping pipeline.
type ScrapeService interface {
	Run(ctx context.Context, req scrape.RunTaskRequest) (*scrape.Report, error)
}

// SubmitService creates pending tasks.
type SubmitService interface {
	Submit(ctx context.Context, req submit.Request) (*submit.Response, error)
}

// ListService lists tasks.
type ListService interface {
	Run(ctx context.Context, req list.Request) (*list.Response, error)
}

// StatusService gets a task and its results.
type StatusService interface {
	Run(ctx context.Context, req status.Request) (*status.Response, error)
}

// RouterConfig is the configuration for the HTTP router.
type RouterConfig struct {
	Scrape ScrapeService
	Submit SubmitService
	List   ListService
	Status StatusService
	Logger log.Logger
}

func (c *RouterConfig) defaults() error {
	if c.Scrape == nil {
		return fmt.Errorf("scrape service is required")
	}
	if c.Submit == nil {
		return fmt.Errorf("submit service is required")
	}
	if c.List == nil {
		return fmt.Errorf("list service is required")
	}
	if c.Status == nil {
		return fmt.Errorf("status service is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.HTTP"})
	return nil
}

type handler struct {
	scrape ScrapeService
	submit SubmitService
	list   ListService
	status StatusService
	logger log.Logger
}

// NewRouter returns the HTTP handler with all the routes registered.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := handler{
		scrape: cfg.Scrape,
		submit: cfg.Submit,
		list:   cfg.List,
		status: cfg.Status,
		logger: cfg.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), h.logRequests())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := router.Group("/api/v1")
	v1.POST("/scrape", h.scrapeURL)
	tasks := v1.Group("/tasks")
	{
		tasks.POST("/bulk", h.submitTasks)
		tasks.GET("", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.GET("/:id/results", h.getTaskResults)
	}

	return router, nil
}

func (h handler) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.WithValues(log.Kv{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debugf("HTTP request handled")
	}
}

type scrapeRequest struct {
	URL    string `json:"url"`
	TaskID string `json:"task_id"`
}

func (h handler) scrapeURL(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.TaskID == "" || req.URL != "" {
		if err := model.ValidateURL(req.URL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := h.scrape.Run(c.Request.Context(), scrape.RunTaskRequest{URL: req.URL, TaskID: req.TaskID})
	if err != nil {
		switch {
		case errors.Is(err, scrape.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found", "task_id": req.TaskID})
		case errors.Is(err, model.ErrNotValid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Errorf("Scrape failed: %s", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	msg := "Scraping completed"
	if report.Task.Status == model.TaskStatusFailed {
		msg = "Scraping failed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"task":    printer.NewTaskOutput(report.Task),
		"result":  printer.NewResultOutput(*report.Result),
	})
}

type bulkRequest struct {
	URLs []string `json:"urls"`
}

func (h handler) submitTasks(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	resp, err := h.submit.Submit(c.Request.Context(), submit.Request{URLs: req.URLs})
	if err != nil {
		if errors.Is(err, model.ErrNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Bulk submit failed: %s", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create tasks"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  fmt.Sprintf("%d tasks created", len(resp.TaskIDs)),
		"task_ids": resp.TaskIDs,
	})
}

func (h handler) listTasks(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(list.DefaultPage)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(list.DefaultSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a number"})
		return
	}
	// Zero would mean the default for the service.
	if page == 0 || size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and size must be positive"})
		return
	}

	resp, err := h.list.Run(c.Request.Context(), list.Request{Page: page, Size: size})
	if err != nil {
		if errors.Is(err, model.ErrNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("List tasks failed: %s", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tasks"})
		return
	}

	tasks := make([]printer.TaskOutput, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		tasks = append(tasks, printer.NewTaskOutput(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": resp.Total,
		"page":  resp.Page,
		"size":  resp.Size,
	})
}

func (h handler) getTask(c *gin.Context) {
	resp, ok := h.taskStatus(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": printer.NewTaskOutput(resp.Task)})
}

func (h handler) getTaskResults(c *gin.Context) {
	resp, ok := h.taskStatus(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": printer.NewResultOutputs(resp.Results),
		"total":   len(resp.Results),
	})
}

func (h handler) taskStatus(c *gin.Context, skipResults bool) (*status.Response, bool) {
	id := c.Param("id")
	resp, err := h.status.Run(c.Request.Context(), status.Request{TaskID: id, SkipResults: skipResults})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found", "task_id": id})
			return nil, false
		}
		h.logger.Errorf("Get task %s failed: %s", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get task"})
		return nil, false
	}

	return resp, true
}

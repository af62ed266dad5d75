package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/tasksvc"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) Tasks(ctx context.Context, callerID uuid.UUID, status tasksvc.Status) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Tasks",
			"user_id", callerID,
			"status", status,
			"count", len(t),
			"err", err,
		)
	}()
	return mw.next.Tasks(ctx, callerID, status)
}

func (mw loggingMiddleware) Task(ctx context.Context, callerID, taskID uuid.UUID) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Task",
			"user_id", callerID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.Task(ctx, callerID, taskID)
}

func (mw loggingMiddleware) CreateTask(ctx context.Context, callerID uuid.UUID, title string, description *string, status tasksvc.Status) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"user_id", callerID,
			"title", title,
			"status", t.Status,
			"task_id", t.ID,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, callerID, title, description, status)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, callerID, taskID uuid.UUID, p tasksvc.Patch) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"user_id", callerID,
			"task_id", taskID,
			"title_set", p.Title != nil,
			"description_set", p.SetDescription,
			"status", t.Status,
			"err", err,
		)
	}()
	return mw.next.UpdateTask(ctx, callerID, taskID, p)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, callerID, taskID uuid.UUID) (err error) {
	defer func() {
		mw.logger.Log(
			"method", "DeleteTask",
			"user_id", callerID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.DeleteTask(ctx, callerID, taskID)
}

func (mw loggingMiddleware) ArchiveTask(ctx context.Context, callerID, taskID uuid.UUID) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "ArchiveTask",
			"user_id", callerID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.ArchiveTask(ctx, callerID, taskID)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) observe(method string, begin time.Time) {
	mw.requestCount.With("method", method).Add(1)
	mw.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context, callerID uuid.UUID, status tasksvc.Status) ([]tasksvc.Task, error) {
	defer mw.observe("tasks", time.Now())
	return mw.next.Tasks(ctx, callerID, status)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	defer mw.observe("task", time.Now())
	return mw.next.Task(ctx, callerID, taskID)
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, callerID uuid.UUID, title string, description *string, status tasksvc.Status) (tasksvc.Task, error) {
	defer mw.observe("create_task", time.Now())
	return mw.next.CreateTask(ctx, callerID, title, description, status)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, callerID, taskID uuid.UUID, p tasksvc.Patch) (tasksvc.Task, error) {
	defer mw.observe("update_task", time.Now())
	return mw.next.UpdateTask(ctx, callerID, taskID, p)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, callerID, taskID uuid.UUID) error {
	defer mw.observe("delete_task", time.Now())
	return mw.next.DeleteTask(ctx, callerID, taskID)
}

func (mw instrumentingMiddleware) ArchiveTask(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	defer mw.observe("archive_task", time.Now())
	return mw.next.ArchiveTask(ctx, callerID, taskID)
}

package userservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/usersvc"
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

func (mw loggingMiddleware) User(ctx context.Context, id uuid.UUID) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "User", "id", id, "err", err)
	}()
	return mw.next.User(ctx, id)
}

func (mw loggingMiddleware) CreateUser(ctx context.Context, email, name string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "CreateUser", "email", email, "id", u.ID, "err", err)
	}()
	return mw.next.CreateUser(ctx, email, name)
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

func (mw instrumentingMiddleware) User(ctx context.Context, id uuid.UUID) (u usersvc.User, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user").Add(1)
		mw.requestLatency.With("method", "user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.User(ctx, id)
}

func (mw instrumentingMiddleware) CreateUser(ctx context.Context, email, name string) (u usersvc.User, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_user").Add(1)
		mw.requestLatency.With("method", "create_user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateUser(ctx, email, name)
}

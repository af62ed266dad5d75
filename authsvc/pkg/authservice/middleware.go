package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
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

func (mw loggingMiddleware) Resolve(ctx context.Context, credential string) (id uuid.UUID, err error) {
	defer func() {
		mw.logger.Log("method", "Resolve", "user_id", id, "err", err)
	}()
	return mw.next.Resolve(ctx, credential)
}

package service

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"
	"github.com/haierkeys/fast-note-kb-service/pkg/writequeue"

	"go.uber.org/zap"
)

// toCodeError maps repository errors onto response codes. Unexpected errors are
// logged and reported as ErrorDBQuery.
func toCodeError(lg *zap.Logger, uid int64, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNoteNotFound):
		return code.ErrorNoteNotFound
	case errors.Is(err, domain.ErrTagNotFound):
		return code.ErrorTagNotFound
	case errors.Is(err, domain.ErrNotFound):
		return code.ErrorNotFoundAPI
	case errors.Is(err, domain.ErrVersionConflict):
		return code.ErrorNoteVersionConflict
	case errors.Is(err, domain.ErrTagTitleExists):
		tagConflicts.Inc()
		return code.ErrorTagTitleExists
	case errors.Is(err, writequeue.ErrWriteQueueFull):
		return code.ErrorTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	var c *code.Code
	if errors.As(err, &c) {
		return c
	}
	lg.Error("storage operation failed",
		zap.String(logger.FieldMethod, op),
		zap.Int64(logger.FieldUID, uid),
		zap.Error(err))
	return code.ErrorDBQuery.WithDetails(err.Error())
}

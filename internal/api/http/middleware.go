package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/observability"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewUnclassified(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				failure := classify(c, err)
				metrics.RecordError(c.Path(), c.Method(), failure.Code)
				if failure.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.String("code", failure.Code),
						zap.Error(failure))
				}
				err = writeFailure(c, failure)
			}
		}()
		return c.Next()
	}
}

// classify maps framework errors onto the failure taxonomy. Client-side fiber
// errors keep their status and report VALIDATION_ERROR.
func classify(c *fiber.Ctx, err error) *apperrors.Failure {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			return apperrors.NewRouteNotFound(c.Method(), c.OriginalURL())
		case fiberErr.Code == fiber.StatusTooManyRequests:
			return apperrors.NewTooManyRequests()
		case fiberErr.Code >= fiber.StatusBadRequest && fiberErr.Code < fiber.StatusInternalServerError:
			failure := apperrors.NewValidation(fiberErr.Message, nil)
			failure.HTTPStatus = fiberErr.Code
			return failure
		}
	}
	return apperrors.ToFailure(err)
}

func writeFailure(c *fiber.Ctx, failure *apperrors.Failure) error {
	public := failure.Public()
	var details any = public.Detail
	if fields, ok := public.Details["fields"]; ok {
		details = fields
	} else if len(public.Details) > 0 {
		details = public.Details
	}
	return c.Status(public.HTTPStatus).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    public.Code,
			"message": public.Message,
			"details": details,
			"status":  public.HTTPStatus,
		},
	})
}

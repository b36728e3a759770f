package controller

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
)

// requestContext carries the request ID set by the RequestID middleware.
func requestContext(ctx echo.Context) context.Context {
	reqCtx := ctx.Request().Context()
	if id := ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return service.WithRequestID(reqCtx, id)
	}
	return reqCtx
}

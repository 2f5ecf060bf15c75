package router

import (
	"profilehub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, accessMiddleware *middleware.AccessMiddleware) {
	SetupUserRouter(e, authMiddleware, accessMiddleware)
	SetupHealthRouter(e)
}

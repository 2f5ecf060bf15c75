package router

import (
	"profilehub/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

func SetupDevRouter(e *echo.Echo, environment string) {
	if environment != "development" {
		return
	}
	devTokenHandler := handler.GetDevTokenHandler()
	if devTokenHandler == nil {
		return
	}

	e.GET("/_dev/token/admin", devTokenHandler.GenerateAdminToken)
	e.GET("/_dev/token/user/:userId", devTokenHandler.GenerateUserToken)
}

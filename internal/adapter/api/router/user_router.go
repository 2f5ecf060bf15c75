package router

import (
	"profilehub/internal/adapter/api/handler"
	"profilehub/internal/adapter/api/middleware"
	"profilehub/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, accessMiddleware *middleware.AccessMiddleware) {

	userHandler := handler.GetUserHandler()

	read := accessMiddleware.Require(entity.RightGetUsers)
	manage := accessMiddleware.Require(entity.RightManageUsers)

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.POST("", userHandler.CreateUser, manage)
	users.GET("", userHandler.ListUsers, read)

	users.GET("/:userId", userHandler.GetUser, read)
	users.PATCH("/:userId", userHandler.UpdateUser, manage)
	users.DELETE("/:userId", userHandler.DeleteUser, manage)

	users.PATCH("/cover-image/:userId", userHandler.UpdateCoverImage, manage)
	users.DELETE("/cover-image/:userId", userHandler.DeleteCoverImage, manage)
	users.DELETE("/image/:userId", userHandler.DeleteImage, manage)

	users.PATCH("/social-media/:userId", userHandler.SetSocialMedia, manage)

	users.POST("/company/:userId", userHandler.AddCompany, manage)
	users.DELETE("/company/:userId", userHandler.DeleteCompanyImage, manage)
	users.PATCH("/company/:userId/:companyId", userHandler.UpdateCompany, manage)
	users.DELETE("/company/:userId/:companyId", userHandler.DeleteCompany, manage)
	users.DELETE("/company/:userId/:companyId/image", userHandler.DeleteCompanyImage, manage)

	users.POST("/office-timing/:userId", userHandler.SetOfficeTiming, manage)
	users.GET("/office-timing/:userId", userHandler.GetOfficeTimings, read)

	users.POST("/gallery/:userId", userHandler.UploadGalleryImages, manage)
	users.DELETE("/gallery/:userId", userHandler.DeleteGalleryImages, manage)

	users.POST("/files/:userId", userHandler.UploadFiles, manage)

	users.POST("/product/:userId", userHandler.AddProduct, manage)
	users.PATCH("/product/:userId/:productId", userHandler.UpdateProduct, manage)
	users.DELETE("/product/:userId/:productId", userHandler.DeleteProduct, manage)
}

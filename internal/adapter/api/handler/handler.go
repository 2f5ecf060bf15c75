package handler

import (
	"profilehub/internal/usecase"
)

var userHandler *UserHandler

func Setup(userUseCase *usecase.UserUseCase, uploads *FileHandler) {
	userHandler = NewUserHandler(userUseCase, uploads)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

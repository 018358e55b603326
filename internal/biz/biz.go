package biz

import (
	"github.com/anthropics/feishu-guard/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Moderation *usecase.ModerationUsecase
	Commands   *usecase.CommandUsecase
}

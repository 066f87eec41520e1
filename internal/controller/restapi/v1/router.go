package v1

import (
	"github.com/andreyxaxa/File-Moderator/internal/usecase"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewModerationRoutes(apiV1Group fiber.Router, mod usecase.ModerationUseCase, jrn usecase.JournalUseCase, l logger.Interface) {
	r := &V1{mod: mod, jrn: jrn, logger: l}

	{
		apiV1Group.Post("/moderate", r.moderate)
		apiV1Group.Get("/moderations", r.listModerations)
		apiV1Group.Get("/reports", r.getReport)
	}
}

package v1

import (
	"github.com/andreyxaxa/File-Moderator/internal/usecase"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
)

type V1 struct {
	mod    usecase.ModerationUseCase
	jrn    usecase.JournalUseCase
	logger logger.Interface
}

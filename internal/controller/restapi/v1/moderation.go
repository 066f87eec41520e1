package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/File-Moderator/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/File-Moderator/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/File-Moderator/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Moderate object
// @Description Runs the moderation pipeline for an object of the bucket and journals the outcome
// @Tags 		moderation
// @Accept 		json
// @Produce 	json
// @Param 		request body request.Moderate true "Object key"
// @Success 	200 {object} response.Moderation
// @Failure 	400 {object} response.Error "Empty, invalid or reserved key"
// @Failure 	404 {object} response.Error "Object not found"
// @Failure 	502 {object} response.Error "Collaborator failure, stage tells where"
// @Router 		/v1/moderate [post]
func (r *V1) moderate(ctx *fiber.Ctx) error {
	var req request.Moderate
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Key(req.Key); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	if r.mod.IsOutputKey(req.Key) {
		return errorResponse(ctx, http.StatusBadRequest, "key belongs to moderation output")
	}

	outcome, err := r.mod.Moderate(ctx.UserContext(), req.Key)

	result, jerr := r.jrn.Record(ctx.UserContext(), outcome, err)
	if jerr != nil {
		r.logger.Error(jerr, "restapi - v1 - moderate - r.jrn.Record")
	}

	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) && outcome.FailedAt == entity.StageClassified {
			return errorResponse(ctx, http.StatusNotFound, "object not found")
		}

		return ctx.Status(http.StatusBadGateway).JSON(response.Error{
			Error: errs.Kind(err),
			Stage: string(outcome.FailedAt),
		})
	}

	return ctx.Status(http.StatusOK).JSON(response.NewModeration(outcome, result))
}

// @Summary 	List moderation journal
// @Description Returns journal entries of a key, newest first
// @Tags 		moderation
// @Produce 	json
// @Param 		key   query string true  "Object key"
// @Param 		limit query int    false "Max entries (1-100, default 20)"
// @Success 	200 {object} response.Moderations
// @Failure 	400 {object} response.Error "Invalid key or limit"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/moderations [get]
func (r *V1) listModerations(ctx *fiber.Ctx) error {
	key := ctx.Query("key")
	if err := validate.Key(key); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	limit, err := validate.Limit(ctx.Query("limit"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	results, err := r.jrn.ListByKey(ctx.UserContext(), key, limit)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listModerations")

		return errorResponse(ctx, http.StatusInternalServerError, "journal problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewModerations(key, results))
}

// @Summary 	Get moderation report
// @Description Loads the stored report of a key and recomputes its verdict with the active thresholds
// @Tags 		moderation
// @Produce 	json
// @Param 		key query string true "Object key"
// @Success 	200 {object} response.Report
// @Failure 	400 {object} response.Error "Invalid key"
// @Failure 	404 {object} response.Error "Report not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/reports [get]
func (r *V1) getReport(ctx *fiber.Ctx) error {
	key := ctx.Query("key")
	if err := validate.Key(key); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	record, verdict, err := r.mod.LoadReport(ctx.UserContext(), key)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "report not found")
		}
		r.logger.Error(err, "restapi - v1 - getReport")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(response.Report{
		Verdict: verdict.Status(),
		Record:  record,
	})
}

package controller

import (
	"khmerlearn_backend/internal/service"
	"khmerlearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	ProgressionService  *service.ProgressionService
	AvailabilityService *service.AvailabilityService
	CompletionService   *service.CompletionService
}

func NewProgressionController(
	progressionService *service.ProgressionService,
	availabilityService *service.AvailabilityService,
	completionService *service.CompletionService,
) *ProgressionController {
	return &ProgressionController{
		ProgressionService:  progressionService,
		AvailabilityService: availabilityService,
		CompletionService:   completionService,
	}
}

// @Summary Article list with unlock status
// @Description Active articles in reading order, each annotated with availability and the caller's completion record
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /progression/articles [get]
func (c *ProgressionController) ListArticlesWithStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.ProgressionService.ListArticlesWithStatus(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Progress summary
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /progression/summary [get]
func (c *ProgressionController) ProgressSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.ProgressionService.ProgressSummary(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary Check availability
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Success 200 {object} util.Response
// @Router /articles/{id}/availability [get]
func (c *ProgressionController) CheckAvailability(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	articleID := util.MustParseUint(ctx.Param("id"))

	availability, err := c.AvailabilityService.Check(user.UserID, articleID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, availability)
}

// @Summary Record a completed attempt
// @Description Records accuracy/typing speed for a finished reading attempt and recomputes the forward unlock
// @Tags progression
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Param body body service.MarkCompletedRequest true "attempt result"
// @Success 200 {object} util.Response
// @Router /articles/{id}/completions [post]
func (c *ProgressionController) MarkCompleted(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	articleID := util.MustParseUint(ctx.Param("id"))

	var req service.MarkCompletedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	completion, err := c.CompletionService.MarkCompleted(user.UserID, articleID, req)
	if err != nil {
		if err == util.ErrConflict {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, completion)
}

// @Summary Start a retry attempt
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Success 200 {object} util.Response
// @Router /articles/{id}/attempts [post]
func (c *ProgressionController) IncrementAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	articleID := util.MustParseUint(ctx.Param("id"))

	completion, err := c.CompletionService.IncrementAttempt(user.UserID, articleID)
	if err != nil {
		if err == util.ErrConflict {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, completion)
}

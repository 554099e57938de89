package controller

import (
	"khmerlearn_backend/internal/service"
	"khmerlearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ArticleSettingController struct {
	SettingService *service.SettingService
}

func NewArticleSettingController(settingService *service.SettingService) *ArticleSettingController {
	return &ArticleSettingController{SettingService: settingService}
}

// @Summary List all settings
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/settings [get]
func (c *ArticleSettingController) ListSettings(ctx *gin.Context) {
	settings, err := c.SettingService.ListSettings()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// @Summary Get or create the article's setting
// @Description Returns the existing setting, synthesizing defaults at the end of the sequence for never-configured articles
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Success 200 {object} util.Response
// @Router /admin/articles/{id}/setting [get]
func (c *ArticleSettingController) GetSetting(ctx *gin.Context) {
	articleID := util.MustParseUint(ctx.Param("id"))

	setting, err := c.SettingService.GetOrCreateDefault(articleID)
	if err != nil {
		if err == util.ErrArticleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, setting)
}

// @Summary Update setting
// @Description Applies a partial patch; rejects invalid modes, negative delays and cyclic prerequisites
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Param body body service.SettingPatch true "patch"
// @Success 200 {object} util.Response
// @Router /admin/articles/{id}/setting [put]
func (c *ArticleSettingController) UpdateSetting(ctx *gin.Context) {
	articleID := util.MustParseUint(ctx.Param("id"))

	var patch service.SettingPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	setting, err := c.SettingService.UpdateSetting(articleID, patch)
	if err != nil {
		if err == util.ErrSettingNotFound {
			util.NotFound(ctx)
			return
		}
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, setting)
}

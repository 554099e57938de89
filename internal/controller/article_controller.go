package controller

import (
	"fmt"
	"path/filepath"
	"time"

	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/service"
	"khmerlearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ArticleController struct {
	ArticleService *service.ArticleService
	StorageService *service.StorageService
}

func NewArticleController(articleService *service.ArticleService, storageService *service.StorageService) *ArticleController {
	return &ArticleController{
		ArticleService: articleService,
		StorageService: storageService,
	}
}

// @Summary List articles
// @Tags articles
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response
// @Router /articles [get]
func (c *ArticleController) ListArticles(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page := int(util.MustParseUint(ctx.DefaultQuery("page", "1")))
	if page < 1 {
		page = 1
	}
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "20")))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	publishedOnly := user.Role != model.Admin
	articles, total, err := c.ArticleService.ListArticles(publishedOnly, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  articles,
		Total: int64(total),
		Page:  page,
		Limit: limit,
	})
}

// @Summary Get article
// @Tags articles
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Success 200 {object} util.Response
// @Router /articles/{id} [get]
func (c *ArticleController) GetArticle(ctx *gin.Context) {
	articleID := util.MustParseUint(ctx.Param("id"))

	article, err := c.ArticleService.GetArticle(articleID)
	if err != nil {
		if err == util.ErrArticleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, article)
}

// @Summary Create article
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ArticleCreateRequest true "article"
// @Success 201 {object} util.Response
// @Router /admin/articles [post]
func (c *ArticleController) CreateArticle(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ArticleCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	article, err := c.ArticleService.CreateArticle(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, article)
}

// @Summary Update article
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Param body body service.ArticleCreateRequest true "article"
// @Success 200 {object} util.Response
// @Router /admin/articles/{id} [put]
func (c *ArticleController) UpdateArticle(ctx *gin.Context) {
	articleID := util.MustParseUint(ctx.Param("id"))

	var req service.ArticleCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	article, err := c.ArticleService.UpdateArticle(articleID, req)
	if err != nil {
		if err == util.ErrArticleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, article)
}

// @Summary Delete article
// @Description Removes the article, its setting and all completion records
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Success 200 {object} util.Response
// @Router /admin/articles/{id} [delete]
func (c *ArticleController) DeleteArticle(ctx *gin.Context) {
	articleID := util.MustParseUint(ctx.Param("id"))

	if err := c.ArticleService.DeleteArticle(articleID); err != nil {
		if err == util.ErrArticleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Article deleted"})
}

type SchedulePublishRequest struct {
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt"`
}

// @Summary Schedule publish
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "article id"
// @Param body body SchedulePublishRequest true "schedule"
// @Success 200 {object} util.Response
// @Router /admin/articles/{id}/schedule-publish [post]
func (c *ArticleController) SchedulePublish(ctx *gin.Context) {
	articleID := util.MustParseUint(ctx.Param("id"))

	var req SchedulePublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ArticleService.SchedulePublish(articleID, req.ScheduledPublishAt); err != nil {
		if err == util.ErrArticleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Publish scheduled"})
}

// @Summary Upload cover image
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "cover image"
// @Success 200 {object} util.Response
// @Router /admin/articles/cover [post]
func (c *ArticleController) UploadCover(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("covers/%s%s", model.GenerateUUID(), filepath.Ext(file.Filename))
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

package service

import (
	"time"

	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"
	"khmerlearn_backend/internal/util"
	"khmerlearn_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ArticleService struct {
	ArticleRepo *repository.ArticleRepository
	SettingRepo *repository.ArticleSettingRepository
}

func NewArticleService(articleRepo *repository.ArticleRepository, settingRepo *repository.ArticleSettingRepository) *ArticleService {
	return &ArticleService{
		ArticleRepo: articleRepo,
		SettingRepo: settingRepo,
	}
}

type ArticleCreateRequest struct {
	Title              string     `json:"title" binding:"required"`
	Summary            string     `json:"summary"`
	Content            string     `json:"content"`
	CoverURL           string     `json:"coverUrl"`
	IsPublished        bool       `json:"isPublished"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt"`
}

// CreateArticle stores the article and seeds its progression setting at
// the end of the reading sequence.
func (s *ArticleService) CreateArticle(authorID uint, req ArticleCreateRequest) (*model.Article, error) {
	article := &model.Article{
		AuthorID:           authorID,
		Title:              req.Title,
		Summary:            req.Summary,
		Content:            req.Content,
		CoverURL:           req.CoverURL,
		IsPublished:        req.IsPublished,
		ScheduledPublishAt: req.ScheduledPublishAt,
	}
	if req.IsPublished {
		now := time.Now()
		article.PublishedAt = &now
	}
	if err := s.ArticleRepo.Create(article); err != nil {
		return nil, err
	}

	if _, err := s.SettingRepo.GetOrCreateDefault(article.ID); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) UpdateArticle(articleID uint, req ArticleCreateRequest) (*model.Article, error) {
	article, err := s.ArticleRepo.FindByID(articleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrArticleNotFound
		}
		return nil, err
	}

	article.Title = req.Title
	article.Summary = req.Summary
	article.Content = req.Content
	article.CoverURL = req.CoverURL
	article.ScheduledPublishAt = req.ScheduledPublishAt
	if req.IsPublished && !article.IsPublished {
		now := time.Now()
		article.PublishedAt = &now
	}
	article.IsPublished = req.IsPublished

	if err := s.ArticleRepo.Update(article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) GetArticle(articleID uint) (*model.Article, error) {
	article, err := s.ArticleRepo.FindByID(articleID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrArticleNotFound
	}
	return article, err
}

func (s *ArticleService) ListArticles(publishedOnly bool, page, limit int) ([]model.Article, int, error) {
	return s.ArticleRepo.List(publishedOnly, page, limit)
}

func (s *ArticleService) DeleteArticle(articleID uint) error {
	if _, err := s.ArticleRepo.FindByID(articleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrArticleNotFound
		}
		return err
	}

	dependents, err := s.ArticleRepo.Delete(articleID)
	if err != nil {
		return err
	}

	// The cascade wrote settings behind the setting repository's back;
	// drop the cached copies so reads see the cleared prerequisites.
	s.SettingRepo.Invalidate(articleID)
	for _, dependent := range dependents {
		s.SettingRepo.Invalidate(dependent)
	}
	return nil
}

func (s *ArticleService) SchedulePublish(articleID uint, scheduledAt *time.Time) error {
	article, err := s.ArticleRepo.FindByID(articleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrArticleNotFound
		}
		return err
	}
	article.ScheduledPublishAt = scheduledAt
	return s.ArticleRepo.Update(article)
}

// ProcessScheduledPublishes publishes articles whose scheduled time has
// passed. Driven by the background ticker in app.
func (s *ArticleService) ProcessScheduledPublishes() error {
	articles, err := s.ArticleRepo.FindDueScheduled(time.Now())
	if err != nil {
		return err
	}
	for i := range articles {
		article := &articles[i]
		now := time.Now()
		article.IsPublished = true
		article.PublishedAt = &now
		article.ScheduledPublishAt = nil
		if err := s.ArticleRepo.Update(article); err != nil {
			logger.Log.Error("failed to publish scheduled article",
				zap.Uint("articleId", article.ID), zap.Error(err))
			continue
		}
	}
	return nil
}

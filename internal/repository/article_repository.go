package repository

import (
	"time"

	"khmerlearn_backend/internal/model"

	"gorm.io/gorm"
)

type ArticleRepository struct {
	DB *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{DB: db}
}

func (r *ArticleRepository) Create(article *model.Article) error {
	return r.DB.Create(article).Error
}

func (r *ArticleRepository) Update(article *model.Article) error {
	return r.DB.Save(article).Error
}

func (r *ArticleRepository) FindByID(id uint) (*model.Article, error) {
	var article model.Article
	err := r.DB.First(&article, id).Error
	return &article, err
}

func (r *ArticleRepository) List(publishedOnly bool, page, limit int) ([]model.Article, int, error) {
	var articles []model.Article
	var total int64
	query := r.DB.Model(&model.Article{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&articles).Error
	return articles, int(total), err
}

// MapByIDs batch-fetches articles keyed by ID, used to resolve titles
// without per-row lookups.
func (r *ArticleRepository) MapByIDs(ids []uint) (map[uint]*model.Article, error) {
	result := make(map[uint]*model.Article, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var articles []model.Article
	if err := r.DB.Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, err
	}
	for i := range articles {
		result[articles[i].ID] = &articles[i]
	}
	return result, nil
}

// Delete removes the article and everything hanging off it: its
// setting, every user's completion record, and prerequisite references
// from other settings (those fall back to no prerequisite). It returns
// the article IDs whose settings it rewrote so the caller can drop
// their cache entries along with the deleted article's own.
func (r *ArticleRepository) Delete(id uint) ([]uint, error) {
	var dependents []uint
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ArticleSetting{}).
			Where("prerequisite_article_id = ?", id).
			Pluck("article_id", &dependents).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ArticleSetting{}).
			Where("prerequisite_article_id = ?", id).
			Update("prerequisite_article_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&model.ArticleSetting{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&model.UserArticleCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Article{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return dependents, nil
}

func (r *ArticleRepository) FindDueScheduled(now time.Time) ([]model.Article, error) {
	var articles []model.Article
	err := r.DB.Where("scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= ? AND is_published = ?", now, false).
		Find(&articles).Error
	return articles, err
}

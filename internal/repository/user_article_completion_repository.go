package repository

import (
	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/util"

	"gorm.io/gorm"
)

type UserArticleCompletionRepository struct {
	DB *gorm.DB
}

func NewUserArticleCompletionRepository(db *gorm.DB) *UserArticleCompletionRepository {
	return &UserArticleCompletionRepository{DB: db}
}

func (r *UserArticleCompletionRepository) Find(userID, articleID uint) (*model.UserArticleCompletion, error) {
	var completion model.UserArticleCompletion
	err := r.DB.Where("user_id = ? AND article_id = ?", userID, articleID).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

// GetOrCreate returns the ledger row for (user, article), creating it
// lazily on first attempt. The unique index absorbs a double-submit
// race: on a duplicate insert we re-read the winner's row.
func (r *UserArticleCompletionRepository) GetOrCreate(userID, articleID uint) (*model.UserArticleCompletion, error) {
	completion, err := r.Find(userID, articleID)
	if err == nil {
		return completion, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	fresh := &model.UserArticleCompletion{
		UserID:    userID,
		ArticleID: articleID,
		Status:    model.StatusInProgress,
	}
	if err := r.DB.Create(fresh).Error; err != nil {
		if existing, findErr := r.Find(userID, articleID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (r *UserArticleCompletionRepository) ListByUser(userID uint) ([]model.UserArticleCompletion, error) {
	var completions []model.UserArticleCompletion
	err := r.DB.Where("user_id = ?", userID).Find(&completions).Error
	return completions, err
}

// MapByUser batch-fetches a user's ledger keyed by article ID so bulk
// availability checks stay O(1) per article.
func (r *UserArticleCompletionRepository) MapByUser(userID uint) (map[uint]*model.UserArticleCompletion, error) {
	completions, err := r.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	result := make(map[uint]*model.UserArticleCompletion, len(completions))
	for i := range completions {
		result[completions[i].ArticleID] = &completions[i]
	}
	return result, nil
}

// SaveVersioned writes the row back guarded by its lock version. A
// concurrent writer that got there first bumps the version and this
// write affects zero rows, surfacing util.ErrConflict for the caller
// to retry from a fresh read.
func (r *UserArticleCompletionRepository) SaveVersioned(c *model.UserArticleCompletion) error {
	res := r.DB.Model(&model.UserArticleCompletion{}).
		Where("id = ? AND lock_version = ?", c.ID, c.LockVersion).
		Updates(map[string]interface{}{
			"status":         c.Status,
			"best_accuracy":  c.BestAccuracy,
			"typing_speed":   c.TypingSpeed,
			"attempt_count":  c.AttemptCount,
			"time_spent":     c.TimeSpent,
			"completed_at":   c.CompletedAt,
			"next_unlock_at": c.NextUnlockAt,
			"lock_version":   c.LockVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConflict
	}
	c.LockVersion++
	return nil
}

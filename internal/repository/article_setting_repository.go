package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"khmerlearn_backend/internal/config"
	"khmerlearn_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ArticleSettingRepository stores per-article progression settings.
// Settings are read on every availability check but written only from
// the admin surface, so single-row reads go through a redis
// read-through cache that admin writes invalidate.
type ArticleSettingRepository struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Defaults config.ProgressionConfig
	cacheTTL time.Duration
}

func NewArticleSettingRepository(db *gorm.DB, rdb *redis.Client, defaults config.ProgressionConfig) *ArticleSettingRepository {
	ttl := time.Duration(defaults.SettingCacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ArticleSettingRepository{
		DB:       db,
		Redis:    rdb,
		Defaults: defaults,
		cacheTTL: ttl,
	}
}

func settingCacheKey(articleID uint) string {
	return fmt.Sprintf("article_setting:%d", articleID)
}

func (r *ArticleSettingRepository) FindByArticleID(articleID uint) (*model.ArticleSetting, error) {
	if r.Redis != nil {
		if data, err := r.Redis.Get(context.Background(), settingCacheKey(articleID)).Bytes(); err == nil {
			var cached model.ArticleSetting
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	var setting model.ArticleSetting
	if err := r.DB.Where("article_id = ?", articleID).First(&setting).Error; err != nil {
		return nil, err
	}

	r.cache(&setting)
	return &setting, nil
}

// GetOrCreateDefault returns the existing setting or synthesizes one at
// the end of the sequence. Runs in a transaction so two concurrent
// first-accesses agree on the display order.
func (r *ArticleSettingRepository) GetOrCreateDefault(articleID uint) (*model.ArticleSetting, error) {
	var setting model.ArticleSetting
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("article_id = ?", articleID).First(&setting).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		var maxOrder int
		if err := tx.Model(&model.ArticleSetting{}).
			Select("COALESCE(MAX(display_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		setting = model.ArticleSetting{
			ArticleID:               articleID,
			DisplayOrder:            maxOrder + 1,
			AvailabilityMode:        r.defaultAvailabilityMode(),
			TypingMode:              r.defaultTypingMode(),
			IsActive:                true,
			IsRequired:              true,
			MinCompletionPercentage: r.defaultMinCompletionPercentage(),
		}
		return tx.Create(&setting).Error
	})
	if err != nil {
		return nil, err
	}

	r.cache(&setting)
	return &setting, nil
}

// NextInSequence returns the active setting with the smallest display
// order strictly greater than the given article's, or
// gorm.ErrRecordNotFound at the end of the sequence.
func (r *ArticleSettingRepository) NextInSequence(articleID uint) (*model.ArticleSetting, error) {
	current, err := r.FindByArticleID(articleID)
	if err != nil {
		return nil, err
	}

	var next model.ArticleSetting
	err = r.DB.Where("display_order > ? AND is_active = ?", current.DisplayOrder, true).
		Order("display_order asc, id asc").
		First(&next).Error
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// ListActive returns active settings in sequence order. Ties on
// display_order fall back to insertion order.
func (r *ArticleSettingRepository) ListActive() ([]model.ArticleSetting, error) {
	var settings []model.ArticleSetting
	err := r.DB.Where("is_active = ?", true).
		Order("display_order asc, id asc").
		Find(&settings).Error
	return settings, err
}

func (r *ArticleSettingRepository) ListAll() ([]model.ArticleSetting, error) {
	var settings []model.ArticleSetting
	err := r.DB.Order("display_order asc, id asc").Find(&settings).Error
	return settings, err
}

func (r *ArticleSettingRepository) Save(setting *model.ArticleSetting) error {
	if err := r.DB.Save(setting).Error; err != nil {
		return err
	}
	r.Invalidate(setting.ArticleID)
	return nil
}

func (r *ArticleSettingRepository) cache(setting *model.ArticleSetting) {
	if r.Redis == nil {
		return
	}
	if data, err := json.Marshal(setting); err == nil {
		r.Redis.Set(context.Background(), settingCacheKey(setting.ArticleID), data, r.cacheTTL)
	}
}

// Invalidate drops the cached setting. Exported for cascade writes
// that touch settings outside this repository, like article deletion.
func (r *ArticleSettingRepository) Invalidate(articleID uint) {
	if r.Redis == nil {
		return
	}
	r.Redis.Del(context.Background(), settingCacheKey(articleID))
}

func (r *ArticleSettingRepository) defaultAvailabilityMode() model.AvailabilityMode {
	if m := model.AvailabilityMode(r.Defaults.DefaultAvailabilityMode); m.Valid() {
		return m
	}
	return model.ModeSequential
}

func (r *ArticleSettingRepository) defaultTypingMode() model.TypingMode {
	if m := model.TypingMode(r.Defaults.DefaultTypingMode); m.Valid() {
		return m
	}
	return model.TypingNlpOnly
}

func (r *ArticleSettingRepository) defaultMinCompletionPercentage() float64 {
	if r.Defaults.DefaultMinCompletionPercentage > 0 {
		return r.Defaults.DefaultMinCompletionPercentage
	}
	return model.DefaultMinCompletionPercentage
}

package service

import (
	"testing"

	"khmerlearn_backend/internal/config"
	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db *gorm.DB

	settingRepo    *repository.ArticleSettingRepository
	completionRepo *repository.UserArticleCompletionRepository
	articleRepo    *repository.ArticleRepository

	availability *AvailabilityService
	completions  *CompletionService
	progression  *ProgressionService
	settings     *SettingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Article{},
		&model.ArticleSetting{},
		&model.UserArticleCompletion{},
	))

	env := &testEnv{db: db}
	env.settingRepo = repository.NewArticleSettingRepository(db, nil, config.ProgressionConfig{})
	env.completionRepo = repository.NewUserArticleCompletionRepository(db)
	env.articleRepo = repository.NewArticleRepository(db)

	env.availability = NewAvailabilityService(env.settingRepo, env.completionRepo, env.articleRepo)
	env.completions = NewCompletionService(env.settingRepo, env.completionRepo)
	env.progression = NewProgressionService(env.settingRepo, env.completionRepo, env.articleRepo, env.availability)
	env.settings = NewSettingService(env.settingRepo, env.articleRepo)
	return env
}

func (e *testEnv) createArticle(t *testing.T, title string) *model.Article {
	t.Helper()
	article := &model.Article{AuthorID: 1, Title: title, Content: "content", IsPublished: true}
	require.NoError(t, e.db.Create(article).Error)
	return article
}

func (e *testEnv) createSetting(t *testing.T, setting *model.ArticleSetting) *model.ArticleSetting {
	t.Helper()
	require.NoError(t, e.db.Create(setting).Error)
	return setting
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func uintPtr(v uint) *uint        { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

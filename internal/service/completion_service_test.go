package service

import (
	"testing"
	"time"

	"khmerlearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkCompletedFirstAttempt(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")

	completion, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{
		Accuracy:    85,
		TypingSpeed: floatPtr(32),
		TimeSpent:   intPtr(300),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, completion.Status)
	assert.Equal(t, 85.0, completion.BestAccuracy)
	assert.Equal(t, 32.0, completion.TypingSpeed)
	assert.Equal(t, 300, completion.TimeSpent)
	assert.Equal(t, 1, completion.AttemptCount)
	assert.NotNil(t, completion.CompletedAt)
}

func TestMarkCompletedSeedsDefaultSetting(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")

	_, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{Accuracy: 50})
	require.NoError(t, err)

	setting, err := env.settingRepo.FindByArticleID(article.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ModeSequential, setting.AvailabilityMode)
}

func TestMarkCompletedAccuracyThreshold(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:             article.ID,
		DisplayOrder:          1,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		MinCompletionAccuracy: floatPtr(80),
	})

	completion, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{Accuracy: 75})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, completion.Status)

	completion, err = env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{Accuracy: 80})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, completion.Status)
	assert.Equal(t, 2, completion.AttemptCount)
}

func TestMarkCompletedBestAccuracyOnlyImproves(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")

	_, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{
		Accuracy:    90,
		TypingSpeed: floatPtr(40),
	})
	require.NoError(t, err)

	completion, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{
		Accuracy:    60,
		TypingSpeed: floatPtr(25),
	})
	require.NoError(t, err)

	// Best accuracy keeps the high-water mark, typing speed tracks
	// the most recent attempt.
	assert.Equal(t, 90.0, completion.BestAccuracy)
	assert.Equal(t, 25.0, completion.TypingSpeed)
}

func TestMarkCompletedTerminalStatusDoesNotRegress(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:             article.ID,
		DisplayOrder:          1,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		MinCompletionAccuracy: floatPtr(80),
	})

	completion, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{Accuracy: 95})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, completion.Status)

	completion, err = env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{Accuracy: 40})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, completion.Status)
	assert.Equal(t, 95.0, completion.BestAccuracy)
	assert.Equal(t, 2, completion.AttemptCount)
}

func TestMarkCompletedStoresForwardUnlock(t *testing.T) {
	env := newTestEnv(t)
	first := env.createArticle(t, "First")
	second := env.createArticle(t, "Second")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:        first.ID,
		DisplayOrder:     1,
		AvailabilityMode: model.ModeSequential,
		IsActive:         true,
	})
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:             second.ID,
		DisplayOrder:          2,
		AvailabilityMode:      model.ModeTimeGated,
		IsActive:              true,
		PrerequisiteArticleID: &first.ID,
		UnlockDelayDays:       1,
		UnlockDelayHours:      2,
	})

	before := time.Now()
	completion, err := env.completions.MarkCompleted(1, first.ID, MarkCompletedRequest{Accuracy: 100})
	require.NoError(t, err)

	require.NotNil(t, completion.NextUnlockAt)
	delay := completion.NextUnlockAt.Sub(before)
	assert.GreaterOrEqual(t, delay, 26*time.Hour)
	assert.Less(t, delay, 26*time.Hour+time.Minute)
}

func TestMarkCompletedNoForwardUnlockWithoutDelay(t *testing.T) {
	env := newTestEnv(t)
	first := env.createArticle(t, "First")
	second := env.createArticle(t, "Second")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:        first.ID,
		DisplayOrder:     1,
		AvailabilityMode: model.ModeSequential,
		IsActive:         true,
	})
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:             second.ID,
		DisplayOrder:          2,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		PrerequisiteArticleID: &first.ID,
	})

	completion, err := env.completions.MarkCompleted(1, first.ID, MarkCompletedRequest{Accuracy: 100})
	require.NoError(t, err)
	assert.Nil(t, completion.NextUnlockAt)
}

func TestMarkCompletedDropsForwardUnlockWhenDelayRemoved(t *testing.T) {
	env := newTestEnv(t)
	first := env.createArticle(t, "First")
	second := env.createArticle(t, "Second")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:        first.ID,
		DisplayOrder:     1,
		AvailabilityMode: model.ModeSequential,
		IsActive:         true,
	})
	nextSetting := env.createSetting(t, &model.ArticleSetting{
		ArticleID:             second.ID,
		DisplayOrder:          2,
		AvailabilityMode:      model.ModeTimeGated,
		IsActive:              true,
		PrerequisiteArticleID: &first.ID,
		UnlockDelayHours:      2,
	})

	completion, err := env.completions.MarkCompleted(1, first.ID, MarkCompletedRequest{Accuracy: 100})
	require.NoError(t, err)
	require.NotNil(t, completion.NextUnlockAt)

	nextSetting.UnlockDelayHours = 0
	require.NoError(t, env.settingRepo.Save(nextSetting))

	completion, err = env.completions.MarkCompleted(1, first.ID, MarkCompletedRequest{Accuracy: 100})
	require.NoError(t, err)
	assert.Nil(t, completion.NextUnlockAt)

	fresh, err := env.completionRepo.Find(1, first.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.NextUnlockAt)
}

func TestIncrementAttempt(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:             article.ID,
		DisplayOrder:          1,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		MinCompletionAccuracy: floatPtr(80),
	})

	_, err := env.completions.MarkCompleted(1, article.ID, MarkCompletedRequest{Accuracy: 50})
	require.NoError(t, err)

	completion, err := env.completions.IncrementAttempt(1, article.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, completion.AttemptCount)
	assert.Equal(t, model.StatusInProgress, completion.Status)
	assert.Equal(t, 50.0, completion.BestAccuracy)
}

package service

import (
	"testing"
	"time"

	"khmerlearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWithoutSettingIsOpen(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")

	avail, err := env.availability.Check(1, article.ID)
	require.NoError(t, err)
	assert.True(t, avail.Available)
	assert.Empty(t, avail.Reason)
}

func TestEvaluateInactiveDominatesMode(t *testing.T) {
	env := newTestEnv(t)
	setting := &model.ArticleSetting{
		ArticleID:        1,
		AvailabilityMode: model.ModeAlways,
		IsActive:         false,
	}

	avail := env.availability.Evaluate(setting, nil, nil, "", time.Now())
	assert.False(t, avail.Available)
	assert.Equal(t, "not available", avail.Reason)
}

func TestEvaluateAlwaysIgnoresPrerequisite(t *testing.T) {
	env := newTestEnv(t)
	setting := &model.ArticleSetting{
		ArticleID:             2,
		AvailabilityMode:      model.ModeAlways,
		IsActive:              true,
		PrerequisiteArticleID: uintPtr(1),
	}

	avail := env.availability.Evaluate(setting, nil, nil, "Vowels", time.Now())
	assert.True(t, avail.Available)
}

func TestEvaluateSequentialNamesPrerequisite(t *testing.T) {
	env := newTestEnv(t)
	setting := &model.ArticleSetting{
		ArticleID:             2,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		PrerequisiteArticleID: uintPtr(1),
	}

	avail := env.availability.Evaluate(setting, nil, nil, "Vowels", time.Now())
	assert.False(t, avail.Available)
	assert.Equal(t, `complete "Vowels" first`, avail.Reason)

	avail = env.availability.Evaluate(setting, nil, nil, "", time.Now())
	assert.Equal(t, "complete the previous article first", avail.Reason)
}

func TestEvaluateSequentialNonTerminalPrereqStaysLocked(t *testing.T) {
	env := newTestEnv(t)
	setting := &model.ArticleSetting{
		ArticleID:             2,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		PrerequisiteArticleID: uintPtr(1),
	}

	prereq := &model.UserArticleCompletion{Status: model.StatusFailed, AttemptCount: 2}
	avail := env.availability.Evaluate(setting, nil, prereq, "Vowels", time.Now())
	assert.False(t, avail.Available)

	prereq.Status = model.StatusPassed
	avail = env.availability.Evaluate(setting, nil, prereq, "Vowels", time.Now())
	assert.True(t, avail.Available)
}

func TestEvaluateTimeGate(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	completedAt := now.Add(-time.Hour)
	setting := &model.ArticleSetting{
		ArticleID:             2,
		AvailabilityMode:      model.ModeTimeGated,
		IsActive:              true,
		PrerequisiteArticleID: uintPtr(1),
		UnlockDelayHours:      3,
	}
	prereq := &model.UserArticleCompletion{Status: model.StatusCompleted, CompletedAt: &completedAt}

	avail := env.availability.Evaluate(setting, nil, prereq, "Vowels", now)
	assert.False(t, avail.Available)
	assert.Equal(t, "available in 2 hours", avail.Reason)
	require.NotNil(t, avail.AvailableAt)
	assert.Equal(t, completedAt.Add(3*time.Hour), *avail.AvailableAt)
}

func TestEvaluateTimeGateElapsed(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	completedAt := now.Add(-5 * time.Hour)
	setting := &model.ArticleSetting{
		ArticleID:             2,
		AvailabilityMode:      model.ModeTimeGated,
		IsActive:              true,
		PrerequisiteArticleID: uintPtr(1),
		UnlockDelayHours:      3,
	}
	prereq := &model.UserArticleCompletion{Status: model.StatusCompleted, CompletedAt: &completedAt}

	avail := env.availability.Evaluate(setting, nil, prereq, "Vowels", now)
	assert.True(t, avail.Available)
	assert.Nil(t, avail.AvailableAt)
}

func TestEvaluateTimeGateWithoutDelayBehavesSequentially(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	completedAt := now.Add(-time.Minute)
	setting := &model.ArticleSetting{
		ArticleID:             2,
		AvailabilityMode:      model.ModeTimeGated,
		IsActive:              true,
		PrerequisiteArticleID: uintPtr(1),
	}
	prereq := &model.UserArticleCompletion{Status: model.StatusPassed, CompletedAt: &completedAt}

	avail := env.availability.Evaluate(setting, nil, prereq, "Vowels", now)
	assert.True(t, avail.Available)
}

func TestEvaluateAttemptLimit(t *testing.T) {
	env := newTestEnv(t)
	setting := &model.ArticleSetting{
		ArticleID:        1,
		AvailabilityMode: model.ModeSequential,
		IsActive:         true,
		MaxAttempts:      intPtr(3),
	}

	own := &model.UserArticleCompletion{Status: model.StatusFailed, AttemptCount: 3}
	avail := env.availability.Evaluate(setting, own, nil, "", time.Now())
	assert.False(t, avail.Available)
	assert.Equal(t, "attempt limit reached (3)", avail.Reason)

	own.AttemptCount = 2
	avail = env.availability.Evaluate(setting, own, nil, "", time.Now())
	assert.True(t, avail.Available)
}

func TestCheckLoadsPrerequisiteTitle(t *testing.T) {
	env := newTestEnv(t)
	vowels := env.createArticle(t, "Vowels")
	consonants := env.createArticle(t, "Consonants")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:             consonants.ID,
		DisplayOrder:          2,
		AvailabilityMode:      model.ModeSequential,
		IsActive:              true,
		PrerequisiteArticleID: &vowels.ID,
	})

	avail, err := env.availability.Check(1, consonants.ID)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, `complete "Vowels" first`, avail.Reason)
}

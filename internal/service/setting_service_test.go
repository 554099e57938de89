package service

import (
	"errors"
	"testing"

	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDefaultRequiresArticle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.settings.GetOrCreateDefault(999)
	assert.Equal(t, util.ErrArticleNotFound, err)

	article := env.createArticle(t, "Intro")
	setting, err := env.settings.GetOrCreateDefault(article.ID)
	require.NoError(t, err)
	assert.Equal(t, article.ID, setting.ArticleID)
}

func TestUpdateSettingUnknownArticle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.settings.UpdateSetting(999, SettingPatch{IsActive: boolPtr(false)})
	assert.Equal(t, util.ErrSettingNotFound, err)
}

func TestUpdateSettingValidation(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, "Intro")
	env.createSetting(t, &model.ArticleSetting{
		ArticleID:        article.ID,
		DisplayOrder:     1,
		AvailabilityMode: model.ModeSequential,
		IsActive:         true,
	})

	cases := []struct {
		name  string
		patch SettingPatch
		field string
	}{
		{"negative delay days", SettingPatch{UnlockDelayDays: intPtr(-1)}, "unlockDelayDays"},
		{"negative delay hours", SettingPatch{UnlockDelayHours: intPtr(-2)}, "unlockDelayHours"},
		{"unknown availability mode", SettingPatch{AvailabilityMode: stringPtr("whenever")}, "availabilityMode"},
		{"unknown typing mode", SettingPatch{TypingMode: stringPtr("fast")}, "typingMode"},
		{"zero max attempts", SettingPatch{MaxAttempts: intPtr(0)}, "maxAttempts"},
		{"accuracy out of range", SettingPatch{MinCompletionAccuracy: floatPtr(101)}, "minCompletionAccuracy"},
		{"self prerequisite", SettingPatch{PrerequisiteArticleID: &article.ID}, "prerequisiteArticleId"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.settings.UpdateSetting(article.ID, tc.patch)
			var verr *util.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestUpdateSettingRejectsCycle(t *testing.T) {
	env := newTestEnv(t)
	a := env.createArticle(t, "A")
	b := env.createArticle(t, "B")
	c := env.createArticle(t, "C")

	env.createSetting(t, &model.ArticleSetting{ArticleID: a.ID, DisplayOrder: 1, AvailabilityMode: model.ModeSequential, IsActive: true})
	env.createSetting(t, &model.ArticleSetting{ArticleID: b.ID, DisplayOrder: 2, AvailabilityMode: model.ModeSequential, IsActive: true, PrerequisiteArticleID: &a.ID})
	env.createSetting(t, &model.ArticleSetting{ArticleID: c.ID, DisplayOrder: 3, AvailabilityMode: model.ModeSequential, IsActive: true, PrerequisiteArticleID: &b.ID})

	// A <- B <- C already holds, so C as A's prerequisite closes a loop.
	_, err := env.settings.UpdateSetting(a.ID, SettingPatch{PrerequisiteArticleID: &c.ID})
	var verr *util.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "prerequisiteArticleId", verr.Field)

	// The same edge on an unrelated article is fine.
	d := env.createArticle(t, "D")
	env.createSetting(t, &model.ArticleSetting{ArticleID: d.ID, DisplayOrder: 4, AvailabilityMode: model.ModeSequential, IsActive: true})
	_, err = env.settings.UpdateSetting(d.ID, SettingPatch{PrerequisiteArticleID: &c.ID})
	assert.NoError(t, err)
}

func TestUpdateSettingAppliesPatch(t *testing.T) {
	env := newTestEnv(t)
	first := env.createArticle(t, "First")
	second := env.createArticle(t, "Second")
	env.createSetting(t, &model.ArticleSetting{ArticleID: first.ID, DisplayOrder: 1, AvailabilityMode: model.ModeSequential, IsActive: true})
	env.createSetting(t, &model.ArticleSetting{ArticleID: second.ID, DisplayOrder: 2, AvailabilityMode: model.ModeSequential, IsActive: true})

	updated, err := env.settings.UpdateSetting(second.ID, SettingPatch{
		PrerequisiteArticleID: &first.ID,
		AvailabilityMode:      stringPtr(string(model.ModeTimeGated)),
		TypingMode:            stringPtr(string(model.TypingAdaptive)),
		UnlockDelayDays:       intPtr(1),
		UnlockDelayHours:      intPtr(6),
		MaxAttempts:           intPtr(5),
		MinCompletionAccuracy: floatPtr(80),
	})
	require.NoError(t, err)

	assert.Equal(t, model.ModeTimeGated, updated.AvailabilityMode)
	assert.Equal(t, model.TypingAdaptive, updated.TypingMode)
	assert.Equal(t, 30, updated.TotalDelayHours())
	require.NotNil(t, updated.PrerequisiteArticleID)
	assert.Equal(t, first.ID, *updated.PrerequisiteArticleID)
	require.NotNil(t, updated.MaxAttempts)
	assert.Equal(t, 5, *updated.MaxAttempts)

	// Untouched fields survive a partial patch.
	assert.True(t, updated.IsActive)
	assert.Equal(t, 2, updated.DisplayOrder)
}

func TestUpdateSettingClearPrerequisite(t *testing.T) {
	env := newTestEnv(t)
	first := env.createArticle(t, "First")
	second := env.createArticle(t, "Second")
	env.createSetting(t, &model.ArticleSetting{ArticleID: first.ID, DisplayOrder: 1, AvailabilityMode: model.ModeSequential, IsActive: true})
	env.createSetting(t, &model.ArticleSetting{ArticleID: second.ID, DisplayOrder: 2, AvailabilityMode: model.ModeSequential, IsActive: true, PrerequisiteArticleID: &first.ID})

	updated, err := env.settings.UpdateSetting(second.ID, SettingPatch{ClearPrerequisite: true})
	require.NoError(t, err)
	assert.Nil(t, updated.PrerequisiteArticleID)
}

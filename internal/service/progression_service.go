package service

import (
	"time"

	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"
)

// ProgressionService is the façade the UI talks to: the ordered
// locked/unlocked article list and the per-user progress summary.
type ProgressionService struct {
	SettingRepo    *repository.ArticleSettingRepository
	CompletionRepo *repository.UserArticleCompletionRepository
	ArticleRepo    *repository.ArticleRepository
	Availability   *AvailabilityService
}

func NewProgressionService(
	settingRepo *repository.ArticleSettingRepository,
	completionRepo *repository.UserArticleCompletionRepository,
	articleRepo *repository.ArticleRepository,
	availability *AvailabilityService,
) *ProgressionService {
	return &ProgressionService{
		SettingRepo:    settingRepo,
		CompletionRepo: completionRepo,
		ArticleRepo:    articleRepo,
		Availability:   availability,
	}
}

type ArticleWithStatus struct {
	Article      *model.Article               `json:"article,omitempty"`
	Setting      *model.ArticleSetting        `json:"setting"`
	Availability *Availability                `json:"availability"`
	Completion   *model.UserArticleCompletion `json:"completion,omitempty"`
}

type ProgressSummary struct {
	TotalActive          int                          `json:"totalActive"`
	CompletedCount       int                          `json:"completedCount"`
	PassedCount          int                          `json:"passedCount"`
	InProgressCount      int                          `json:"inProgressCount"`
	CompletionPercentage float64                      `json:"completionPercentage"`
	LatestCompletion     *model.UserArticleCompletion `json:"latestCompletion,omitempty"`
}

// ListArticlesWithStatus walks the active settings in display order and
// evaluates availability per entry. Settings, completions and article
// titles are batch-fetched up front; the per-entry work is map lookups.
func (s *ProgressionService) ListArticlesWithStatus(userID uint) ([]ArticleWithStatus, error) {
	settings, err := s.SettingRepo.ListActive()
	if err != nil {
		return nil, err
	}

	completions, err := s.CompletionRepo.MapByUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(settings)*2)
	for i := range settings {
		ids = append(ids, settings[i].ArticleID)
		if settings[i].PrerequisiteArticleID != nil {
			ids = append(ids, *settings[i].PrerequisiteArticleID)
		}
	}
	articles, err := s.ArticleRepo.MapByIDs(ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]ArticleWithStatus, 0, len(settings))
	for i := range settings {
		setting := &settings[i]

		var prereq *model.UserArticleCompletion
		prereqTitle := ""
		if setting.PrerequisiteArticleID != nil {
			prereq = completions[*setting.PrerequisiteArticleID]
			if a := articles[*setting.PrerequisiteArticleID]; a != nil {
				prereqTitle = a.Title
			}
		}

		own := completions[setting.ArticleID]
		result = append(result, ArticleWithStatus{
			Article:      articles[setting.ArticleID],
			Setting:      setting,
			Availability: s.Availability.Evaluate(setting, own, prereq, prereqTitle, now),
			Completion:   own,
		})
	}
	return result, nil
}

func (s *ProgressionService) ProgressSummary(userID uint) (*ProgressSummary, error) {
	settings, err := s.SettingRepo.ListActive()
	if err != nil {
		return nil, err
	}
	completions, err := s.CompletionRepo.MapByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &ProgressSummary{TotalActive: len(settings)}
	for i := range settings {
		c := completions[settings[i].ArticleID]
		if c == nil {
			continue
		}
		switch c.Status {
		case model.StatusCompleted:
			summary.CompletedCount++
		case model.StatusPassed:
			summary.PassedCount++
		case model.StatusInProgress:
			if c.AttemptCount > 0 {
				summary.InProgressCount++
			}
		}
		if c.CompletedAt != nil {
			if summary.LatestCompletion == nil ||
				summary.LatestCompletion.CompletedAt == nil ||
				c.CompletedAt.After(*summary.LatestCompletion.CompletedAt) {
				summary.LatestCompletion = c
			}
		}
	}

	if summary.TotalActive > 0 {
		done := summary.CompletedCount + summary.PassedCount
		summary.CompletionPercentage = float64(done) / float64(summary.TotalActive) * 100
	}
	return summary, nil
}

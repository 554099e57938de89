package service

import (
	"time"

	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"
	"khmerlearn_backend/internal/util"
	"khmerlearn_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type CompletionService struct {
	SettingRepo    *repository.ArticleSettingRepository
	CompletionRepo *repository.UserArticleCompletionRepository
}

func NewCompletionService(
	settingRepo *repository.ArticleSettingRepository,
	completionRepo *repository.UserArticleCompletionRepository,
) *CompletionService {
	return &CompletionService{
		SettingRepo:    settingRepo,
		CompletionRepo: completionRepo,
	}
}

type MarkCompletedRequest struct {
	Accuracy    float64  `json:"accuracy" binding:"min=0,max=100"`
	TypingSpeed *float64 `json:"typingSpeed,omitempty"`
	TimeSpent   *int     `json:"timeSpent,omitempty"`
}

// MarkCompleted records a finished reading attempt. Best accuracy only
// ever goes up, typing speed reflects the last attempt, and the status
// follows the accuracy threshold but never leaves a terminal state.
// The forward unlock timestamp for the next article in the sequence is
// stored on this record. A concurrent double-submit loses the version
// race and is retried once from a fresh read.
func (s *CompletionService) MarkCompleted(userID, articleID uint, req MarkCompletedRequest) (*model.UserArticleCompletion, error) {
	setting, err := s.SettingRepo.GetOrCreateDefault(articleID)
	if err != nil {
		return nil, err
	}

	var completion *model.UserArticleCompletion
	for try := 0; ; try++ {
		completion, err = s.CompletionRepo.GetOrCreate(userID, articleID)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		if req.Accuracy > completion.BestAccuracy {
			completion.BestAccuracy = req.Accuracy
		}
		if req.TypingSpeed != nil {
			completion.TypingSpeed = *req.TypingSpeed
		}
		if req.TimeSpent != nil {
			completion.TimeSpent = *req.TimeSpent
		}
		completion.CompletedAt = &now
		completion.AttemptCount++

		if !completion.Status.Terminal() {
			completion.Status = statusForAttempt(setting, req.Accuracy)
		}

		if err := s.applyForwardUnlock(completion, articleID, now); err != nil {
			return nil, err
		}

		err = s.CompletionRepo.SaveVersioned(completion)
		if err == nil {
			break
		}
		if err == util.ErrConflict && try == 0 {
			continue
		}
		return nil, err
	}

	monitoring.CompletionCounter.WithLabelValues(string(completion.Status)).Inc()
	return completion, nil
}

// IncrementAttempt opens a retry: it bumps the attempt counter without
// touching accuracy or timestamps, and moves a failed record back to
// in-progress so the next pass is detected cleanly.
func (s *CompletionService) IncrementAttempt(userID, articleID uint) (*model.UserArticleCompletion, error) {
	for try := 0; ; try++ {
		completion, err := s.CompletionRepo.GetOrCreate(userID, articleID)
		if err != nil {
			return nil, err
		}

		completion.AttemptCount++
		if completion.Status == model.StatusFailed {
			completion.Status = model.StatusInProgress
		}

		err = s.CompletionRepo.SaveVersioned(completion)
		if err == nil {
			return completion, nil
		}
		if err == util.ErrConflict && try == 0 {
			continue
		}
		return nil, err
	}
}

func statusForAttempt(setting *model.ArticleSetting, accuracy float64) model.CompletionStatus {
	if setting.MinCompletionAccuracy != nil {
		if accuracy >= *setting.MinCompletionAccuracy {
			return model.StatusPassed
		}
		return model.StatusFailed
	}
	return model.StatusCompleted
}

func (s *CompletionService) applyForwardUnlock(completion *model.UserArticleCompletion, articleID uint, now time.Time) error {
	next, err := s.SettingRepo.NextInSequence(articleID)
	if err == gorm.ErrRecordNotFound {
		completion.NextUnlockAt = nil
		return nil
	}
	if err != nil {
		return err
	}
	if next.TotalDelayHours() > 0 {
		unlockAt := now.Add(next.UnlockDelay())
		completion.NextUnlockAt = &unlockAt
	} else {
		// The admin may have removed the delay or reordered the
		// sequence since the last attempt; a stale countdown must not
		// survive the re-completion.
		completion.NextUnlockAt = nil
	}
	return nil
}

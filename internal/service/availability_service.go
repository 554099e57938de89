package service

import (
	"fmt"
	"time"

	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"
	"khmerlearn_backend/internal/util"

	"gorm.io/gorm"
)

// Availability is the answer to "can this user open this article now".
// A locked article is an ordinary value, never an error.
type Availability struct {
	Available   bool       `json:"available"`
	Reason      string     `json:"reason,omitempty"`
	AvailableAt *time.Time `json:"availableAt,omitempty"`
}

type AvailabilityService struct {
	SettingRepo    *repository.ArticleSettingRepository
	CompletionRepo *repository.UserArticleCompletionRepository
	ArticleRepo    *repository.ArticleRepository
}

func NewAvailabilityService(
	settingRepo *repository.ArticleSettingRepository,
	completionRepo *repository.UserArticleCompletionRepository,
	articleRepo *repository.ArticleRepository,
) *AvailabilityService {
	return &AvailabilityService{
		SettingRepo:    settingRepo,
		CompletionRepo: completionRepo,
		ArticleRepo:    articleRepo,
	}
}

// Check evaluates a single article for a user, loading whatever the
// rule chain needs. Bulk callers should preload and use Evaluate.
func (s *AvailabilityService) Check(userID, articleID uint) (*Availability, error) {
	setting, err := s.SettingRepo.FindByArticleID(articleID)
	if err == gorm.ErrRecordNotFound {
		// Never-configured articles stay open, matching the behaviour
		// of content that predates progression settings.
		return &Availability{Available: true}, nil
	}
	if err != nil {
		return nil, err
	}

	var own *model.UserArticleCompletion
	if c, err := s.CompletionRepo.Find(userID, articleID); err == nil {
		own = c
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var prereq *model.UserArticleCompletion
	prereqTitle := ""
	if setting.PrerequisiteArticleID != nil {
		if c, err := s.CompletionRepo.Find(userID, *setting.PrerequisiteArticleID); err == nil {
			prereq = c
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		if a, err := s.ArticleRepo.FindByID(*setting.PrerequisiteArticleID); err == nil {
			prereqTitle = a.Title
		}
	}

	return s.Evaluate(setting, own, prereq, prereqTitle, time.Now()), nil
}

// Evaluate runs the decision chain over preloaded state. The order is
// deliberate: the active flag dominates the mode, prerequisite
// completion dominates the time gate, and the attempt cap is checked
// last so a user can be blocked by attempts even with every
// prerequisite satisfied.
func (s *AvailabilityService) Evaluate(
	setting *model.ArticleSetting,
	own *model.UserArticleCompletion,
	prereq *model.UserArticleCompletion,
	prereqTitle string,
	now time.Time,
) *Availability {
	if setting == nil {
		return &Availability{Available: true}
	}

	if !setting.IsActive {
		return &Availability{Available: false, Reason: "not available"}
	}

	if setting.AvailabilityMode == model.ModeAlways {
		return &Availability{Available: true}
	}

	if setting.PrerequisiteArticleID != nil {
		if prereq == nil || !prereq.Status.Terminal() {
			if prereqTitle == "" {
				prereqTitle = "the previous article"
			} else {
				prereqTitle = fmt.Sprintf("%q", prereqTitle)
			}
			return &Availability{
				Available: false,
				Reason:    fmt.Sprintf("complete %s first", prereqTitle),
			}
		}

		if setting.AvailabilityMode == model.ModeTimeGated &&
			setting.TotalDelayHours() > 0 &&
			prereq.CompletedAt != nil {
			unlockAt := prereq.CompletedAt.Add(setting.UnlockDelay())
			if now.Before(unlockAt) {
				return &Availability{
					Available:   false,
					Reason:      fmt.Sprintf("available in %s", util.HumanizeDuration(unlockAt.Sub(now))),
					AvailableAt: &unlockAt,
				}
			}
		}
	}

	if setting.MaxAttempts != nil && own != nil && own.AttemptCount >= *setting.MaxAttempts {
		return &Availability{
			Available: false,
			Reason:    fmt.Sprintf("attempt limit reached (%d)", *setting.MaxAttempts),
		}
	}

	return &Availability{Available: true}
}

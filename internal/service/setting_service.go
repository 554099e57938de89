package service

import (
	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"
	"khmerlearn_backend/internal/util"

	"gorm.io/gorm"
)

// SettingService is the admin surface over article settings. All
// mutation goes through UpdateSetting, which validates the patch and
// refuses prerequisite edges that would close a cycle.
type SettingService struct {
	SettingRepo *repository.ArticleSettingRepository
	ArticleRepo *repository.ArticleRepository
}

func NewSettingService(settingRepo *repository.ArticleSettingRepository, articleRepo *repository.ArticleRepository) *SettingService {
	return &SettingService{SettingRepo: settingRepo, ArticleRepo: articleRepo}
}

type SettingPatch struct {
	DisplayOrder          *int  `json:"displayOrder,omitempty"`
	PrerequisiteArticleID *uint `json:"prerequisiteArticleId,omitempty"`
	ClearPrerequisite     bool  `json:"clearPrerequisite,omitempty"`

	UnlockDelayDays  *int `json:"unlockDelayDays,omitempty"`
	UnlockDelayHours *int `json:"unlockDelayHours,omitempty"`

	AvailabilityMode *string `json:"availabilityMode,omitempty"`
	TypingMode       *string `json:"typingMode,omitempty"`
	IsActive         *bool   `json:"isActive,omitempty"`
	IsRequired       *bool   `json:"isRequired,omitempty"`

	MaxAttempts             *int     `json:"maxAttempts,omitempty"`
	MinCompletionAccuracy   *float64 `json:"minCompletionAccuracy,omitempty"`
	MinCompletionPercentage *float64 `json:"minCompletionPercentage,omitempty"`
	MinTypingSpeed          *float64 `json:"minTypingSpeed,omitempty"`
	MinTypedWordsPercentage *float64 `json:"minTypedWordsPercentage,omitempty"`
}

func (s *SettingService) GetOrCreateDefault(articleID uint) (*model.ArticleSetting, error) {
	if _, err := s.ArticleRepo.FindByID(articleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrArticleNotFound
		}
		return nil, err
	}
	return s.SettingRepo.GetOrCreateDefault(articleID)
}

func (s *SettingService) ListSettings() ([]model.ArticleSetting, error) {
	return s.SettingRepo.ListAll()
}

// UpdateSetting applies a partial patch. Patching an article that has
// never been configured fails hard rather than creating one.
func (s *SettingService) UpdateSetting(articleID uint, patch SettingPatch) (*model.ArticleSetting, error) {
	setting, err := s.SettingRepo.FindByArticleID(articleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSettingNotFound
		}
		return nil, err
	}

	if err := s.validate(articleID, patch); err != nil {
		return nil, err
	}

	if patch.DisplayOrder != nil {
		setting.DisplayOrder = *patch.DisplayOrder
	}
	if patch.ClearPrerequisite {
		setting.PrerequisiteArticleID = nil
	} else if patch.PrerequisiteArticleID != nil {
		setting.PrerequisiteArticleID = patch.PrerequisiteArticleID
	}
	if patch.UnlockDelayDays != nil {
		setting.UnlockDelayDays = *patch.UnlockDelayDays
	}
	if patch.UnlockDelayHours != nil {
		setting.UnlockDelayHours = *patch.UnlockDelayHours
	}
	if patch.AvailabilityMode != nil {
		setting.AvailabilityMode = model.AvailabilityMode(*patch.AvailabilityMode)
	}
	if patch.TypingMode != nil {
		setting.TypingMode = model.TypingMode(*patch.TypingMode)
	}
	if patch.IsActive != nil {
		setting.IsActive = *patch.IsActive
	}
	if patch.IsRequired != nil {
		setting.IsRequired = *patch.IsRequired
	}
	if patch.MaxAttempts != nil {
		setting.MaxAttempts = patch.MaxAttempts
	}
	if patch.MinCompletionAccuracy != nil {
		setting.MinCompletionAccuracy = patch.MinCompletionAccuracy
	}
	if patch.MinCompletionPercentage != nil {
		setting.MinCompletionPercentage = *patch.MinCompletionPercentage
	}
	if patch.MinTypingSpeed != nil {
		setting.MinTypingSpeed = patch.MinTypingSpeed
	}
	if patch.MinTypedWordsPercentage != nil {
		setting.MinTypedWordsPercentage = patch.MinTypedWordsPercentage
	}

	if err := s.SettingRepo.Save(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) validate(articleID uint, patch SettingPatch) error {
	if patch.UnlockDelayDays != nil && *patch.UnlockDelayDays < 0 {
		return util.NewValidationError("unlockDelayDays", "must not be negative")
	}
	if patch.UnlockDelayHours != nil && *patch.UnlockDelayHours < 0 {
		return util.NewValidationError("unlockDelayHours", "must not be negative")
	}
	if patch.AvailabilityMode != nil && !model.AvailabilityMode(*patch.AvailabilityMode).Valid() {
		return util.NewValidationError("availabilityMode", "must be one of always, sequential, time_gated")
	}
	if patch.TypingMode != nil && !model.TypingMode(*patch.TypingMode).Valid() {
		return util.NewValidationError("typingMode", "must be one of nlp_only, nlp_la, adaptive")
	}
	if patch.MaxAttempts != nil && *patch.MaxAttempts <= 0 {
		return util.NewValidationError("maxAttempts", "must be positive")
	}
	if patch.MinCompletionAccuracy != nil && (*patch.MinCompletionAccuracy < 0 || *patch.MinCompletionAccuracy > 100) {
		return util.NewValidationError("minCompletionAccuracy", "must be between 0 and 100")
	}
	if patch.MinCompletionPercentage != nil && (*patch.MinCompletionPercentage < 0 || *patch.MinCompletionPercentage > 100) {
		return util.NewValidationError("minCompletionPercentage", "must be between 0 and 100")
	}

	if patch.ClearPrerequisite || patch.PrerequisiteArticleID == nil {
		return nil
	}
	prereqID := *patch.PrerequisiteArticleID
	if prereqID == articleID {
		return util.NewValidationError("prerequisiteArticleId", "article cannot be its own prerequisite")
	}
	return s.checkNoCycle(articleID, prereqID)
}

// checkNoCycle walks the prerequisite chain from the proposed
// prerequisite; reaching the patched article means the new edge would
// close a cycle. The walk is bounded by the number of settings so
// pre-existing bad data cannot loop it forever.
func (s *SettingService) checkNoCycle(articleID, prereqID uint) error {
	settings, err := s.SettingRepo.ListAll()
	if err != nil {
		return err
	}
	prereqOf := make(map[uint]*uint, len(settings))
	for i := range settings {
		prereqOf[settings[i].ArticleID] = settings[i].PrerequisiteArticleID
	}

	current := prereqID
	for range settings {
		if current == articleID {
			return util.NewValidationError("prerequisiteArticleId", "prerequisite chain would form a cycle")
		}
		next, ok := prereqOf[current]
		if !ok || next == nil {
			return nil
		}
		current = *next
	}
	if current == articleID {
		return util.NewValidationError("prerequisiteArticleId", "prerequisite chain would form a cycle")
	}
	return nil
}

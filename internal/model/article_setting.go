package model

import "time"

type AvailabilityMode string

const (
	ModeAlways     AvailabilityMode = "always"
	ModeSequential AvailabilityMode = "sequential"
	ModeTimeGated  AvailabilityMode = "time_gated"
)

func (m AvailabilityMode) Valid() bool {
	switch m {
	case ModeAlways, ModeSequential, ModeTimeGated:
		return true
	}
	return false
}

type TypingMode string

const (
	TypingNlpOnly  TypingMode = "nlp_only"
	TypingNlpLa    TypingMode = "nlp_la"
	TypingAdaptive TypingMode = "adaptive"
)

func (m TypingMode) Valid() bool {
	switch m {
	case TypingNlpOnly, TypingNlpLa, TypingAdaptive:
		return true
	}
	return false
}

// DefaultMinCompletionPercentage applies when an article has never been
// configured by an admin.
const DefaultMinCompletionPercentage = 70.0

// ArticleSetting holds the per-article progression configuration: where
// the article sits in the reading sequence, which article must be
// finished first, how long the time gate holds after that, and which
// thresholds an attempt has to clear.
// swagger:model ArticleSetting
type ArticleSetting struct {
	BaseModel

	ArticleID             uint  `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"articleId"`
	DisplayOrder          int   `gorm:"index;default:0" json:"displayOrder"`
	PrerequisiteArticleID *uint `gorm:"index;type:bigint unsigned" json:"prerequisiteArticleId,omitempty"`

	UnlockDelayDays  int `gorm:"default:0" json:"unlockDelayDays"`
	UnlockDelayHours int `gorm:"default:0" json:"unlockDelayHours"`

	AvailabilityMode AvailabilityMode `gorm:"size:20;default:'sequential'" json:"availabilityMode"`
	TypingMode       TypingMode       `gorm:"size:20;default:'nlp_only'" json:"typingMode"`
	// No column default on the flags: a zero-value write must stay
	// false rather than be swallowed by the default.
	IsActive   bool `json:"isActive"`
	IsRequired bool `json:"isRequired"`

	MaxAttempts             *int     `json:"maxAttempts,omitempty"`
	MinCompletionAccuracy   *float64 `json:"minCompletionAccuracy,omitempty"`
	MinCompletionPercentage float64  `gorm:"default:70" json:"minCompletionPercentage"`
	MinTypingSpeed          *float64 `json:"minTypingSpeed,omitempty"`
	MinTypedWordsPercentage *float64 `json:"minTypedWordsPercentage,omitempty"`
}

func (ArticleSetting) TableName() string {
	return "article_settings"
}

// TotalDelayHours sums the day and hour parts of the unlock delay.
func (s *ArticleSetting) TotalDelayHours() int {
	return s.UnlockDelayDays*24 + s.UnlockDelayHours
}

// UnlockDelay returns the time gate as a duration.
func (s *ArticleSetting) UnlockDelay() time.Duration {
	return time.Duration(s.TotalDelayHours()) * time.Hour
}

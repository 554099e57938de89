package model

import "time"

type CompletionStatus string

const (
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
	StatusPassed     CompletionStatus = "passed"
	StatusFailed     CompletionStatus = "failed"
)

// Terminal reports whether the status counts as finished for unlock
// purposes. Terminal statuses never regress on later attempts.
func (s CompletionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusPassed
}

// UserArticleCompletion is the per-(user, article) attempt ledger.
// LockVersion guards concurrent mark-completed calls: a save that reads
// a stale version is rejected so best_accuracy can never go backwards
// through a lost update.
// swagger:model UserArticleCompletion
type UserArticleCompletion struct {
	BaseModel

	UserID    uint `gorm:"index:idx_user_article,unique;type:bigint unsigned" json:"userId"`
	ArticleID uint `gorm:"index:idx_user_article,unique;type:bigint unsigned" json:"articleId"`

	Status       CompletionStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	BestAccuracy float64          `gorm:"default:0" json:"bestAccuracy"`
	TypingSpeed  float64          `gorm:"default:0" json:"typingSpeed"`
	AttemptCount int              `gorm:"default:0" json:"attemptCount"`
	TimeSpent    int              `gorm:"default:0" json:"timeSpent"` // seconds, last attempt

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// NextUnlockAt is when the time gate of the *next* article in the
	// sequence opens, measured from this completion. Consumers render
	// the next article's countdown from this field.
	NextUnlockAt *time.Time `json:"nextUnlockAt,omitempty"`

	LockVersion int `gorm:"default:0" json:"-"`
}

func (UserArticleCompletion) TableName() string {
	return "user_article_completions"
}

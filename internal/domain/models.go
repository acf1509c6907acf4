// Package domain defines the persistence models for users, wellness events,
// surveys, journals, quotes, word-frequency rows, and notifications. These
// types are mapped with GORM and form the core data layer of the wellness
// platform.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Roles recognized by the platform. Role gating in the HTTP layer compares
// against these constants.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

// Risk buckets derived from the risk scorer.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Check-in sources.
const (
	SourceWeb      = "web"
	SourceMobile   = "mobile"
	SourceWhatsApp = "whatsapp"
	SourceSlack    = "slack"
)

// Word-frequency source kinds.
const (
	SourceKindJournal = "journal"
	SourceKindSurvey  = "survey"
	SourceKindCheckIn = "checkin"
)

// Survey kinds.
const (
	SurveyKindPulse  = "pulse"
	SurveyKindCustom = "custom"
)

// Journal privacy levels.
const (
	PrivacyPrivate        = "private"
	PrivacyAnonymousShare = "anonymous_share"
	PrivacyTeamShare      = "team_share"
)

// User is an employee account. Department and role drive aggregate scoping
// and authorization; Active is a soft-delete flag (deactivated users keep
// their history but drop out of analytics).
type User struct {
	ID         string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Email      string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	Name       string         `json:"name"       gorm:"type:varchar(255);not null"`
	Department string         `json:"department" gorm:"type:varchar(64);not null;index"`
	Role       string         `json:"role"       gorm:"type:varchar(16);not null;default:'employee';check:role IN ('employee','manager','hr','admin')"`
	Active     bool           `json:"active"     gorm:"not null;default:true;index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// WellnessState is the derived per-user record. It exists iff the user
// exists and is mutated only by the event processor (services package).
//
// Invariants:
//   - HappyCoins >= 0, CurrentStreak >= 0, LongestStreak >= CurrentStreak.
//   - CurrentStreak > 0 implies LastCheckInDate is today or yesterday in
//     UTC day buckets; the daily sweep resets stale streaks.
type WellnessState struct {
	UserID          string     `json:"user_id"           gorm:"type:char(36);primaryKey"`
	HappyCoins      int        `json:"happy_coins"       gorm:"not null;default:0"`
	CurrentStreak   int        `json:"current_streak"    gorm:"not null;default:0"`
	LongestStreak   int        `json:"longest_streak"    gorm:"not null;default:0"`
	LastCheckInDate *time.Time `json:"last_check_in_date,omitempty"`
	AverageMood     *float64   `json:"average_mood,omitempty"`
	RiskScore       float64    `json:"risk_score"        gorm:"not null;default:0"`
	RiskLevel       string     `json:"risk_level"        gorm:"type:varchar(8);not null;default:'low'"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for WellnessState.
func (WellnessState) TableName() string { return "wellness_states" }

// CheckIn is a per-day mood record. Day is the UTC day bucket (YYYY-MM-DD);
// the unique index on (user_id, day) is the storage-level backstop for the
// one-check-in-per-day invariant.
type CheckIn struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID           string    `json:"user_id"            gorm:"type:char(36);not null;index:idx_checkins_user_created,priority:1;uniqueIndex:ux_checkin_user_day"`
	Day              string    `json:"day"                gorm:"type:char(10);not null;index;uniqueIndex:ux_checkin_user_day"`
	Mood             int       `json:"mood"               gorm:"not null;check:mood BETWEEN 1 AND 5"`
	Feedback         string    `json:"feedback,omitempty" gorm:"type:varchar(500)"`
	Source           string    `json:"source"             gorm:"type:varchar(16);not null;default:'web'"`
	HappyCoinsEarned int       `json:"happy_coins_earned" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"         gorm:"index:idx_checkins_user_created,priority:2"`
	UpdatedAt        time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CheckIn.
func (CheckIn) TableName() string { return "check_ins" }

// Question kinds for surveys.
const (
	QuestionScale       = "scale"
	QuestionBoolean     = "boolean"
	QuestionText        = "text"
	QuestionChoice      = "choice"
	QuestionMultiChoice = "multi_choice"
)

// Survey is a survey definition. Responses live in their own table with a
// uniqueness index rather than embedded arrays, so response volume never
// grows the definition row.
type Survey struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title"        gorm:"type:varchar(255);not null"`
	Description string         `json:"description"  gorm:"type:text"`
	Kind        string         `json:"kind"         gorm:"type:varchar(16);not null;default:'custom'"` // pulse|custom
	RewardCoins int            `json:"reward_coins" gorm:"not null;default:0"`
	Active      bool           `json:"active"       gorm:"not null;default:true"`
	DueAt       *time.Time     `json:"due_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	Questions []SurveyQuestion `json:"questions,omitempty" gorm:"foreignKey:SurveyID"`
}

// TableName returns the database table name for Survey.
func (Survey) TableName() string { return "surveys" }

// SurveyQuestion is one prompt within a survey. Tags carry semantic markers
// such as "enps" or "recommendation" used by the eNPS calculator.
type SurveyQuestion struct {
	ID       string   `json:"id"        gorm:"type:char(36);primaryKey"`
	SurveyID string   `json:"survey_id" gorm:"type:char(36);not null;index"`
	Position int      `json:"position"  gorm:"not null;default:0"`
	Kind     string   `json:"kind"      gorm:"type:varchar(16);not null;check:kind IN ('scale','boolean','text','choice','multi_choice')"`
	Prompt   string   `json:"prompt"    gorm:"type:text;not null"`
	Tags     []string `json:"tags,omitempty"    gorm:"serializer:json"`
	Options  []string `json:"options,omitempty" gorm:"serializer:json"`

	Survey Survey `json:"-" gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SurveyQuestion.
func (SurveyQuestion) TableName() string { return "survey_questions" }

// SurveyResponse holds one user's answers to one survey. Answer values are
// typed by the referenced question: float64 for scale/boolean, string for
// text/choice, []string (decoded as []any) for multi-choice.
type SurveyResponse struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	SurveyID    string         `json:"survey_id"    gorm:"type:char(36);not null;index;uniqueIndex:ux_response_survey_user"`
	UserID      string         `json:"user_id"      gorm:"type:char(36);not null;index;uniqueIndex:ux_response_survey_user"`
	Answers     map[string]any `json:"answers"      gorm:"serializer:json"`
	CoinsEarned int            `json:"coins_earned" gorm:"not null;default:0"`
	CompletedAt time.Time      `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Survey Survey `json:"-" gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SurveyResponse.
func (SurveyResponse) TableName() string { return "survey_responses" }

// JournalEntry is a free-form entry. Content is editable for 24 hours after
// creation; WordCount and ReadingTimeMin are computed on write.
type JournalEntry struct {
	ID             string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID         string         `json:"user_id"    gorm:"type:char(36);not null;index:idx_journals_user_created,priority:1"`
	Title          string         `json:"title"      gorm:"type:varchar(255);not null"`
	Body           string         `json:"body"       gorm:"type:text;not null"`
	Mood           int            `json:"mood"       gorm:"not null;check:mood BETWEEN 1 AND 5"`
	Category       string         `json:"category"   gorm:"type:varchar(64)"`
	Tags           []string       `json:"tags,omitempty" gorm:"serializer:json"`
	Privacy        string         `json:"privacy"    gorm:"type:varchar(24);not null;default:'private';check:privacy IN ('private','anonymous_share','team_share')"`
	WordCount      int            `json:"word_count" gorm:"not null;default:0"`
	ReadingTimeMin int            `json:"reading_time_min" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at" gorm:"index:idx_journals_user_created,priority:2"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"          gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for JournalEntry.
func (JournalEntry) TableName() string { return "journal_entries" }

// Quote is a motivational quote rotated daily.
type Quote struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Text      string    `json:"text"     gorm:"type:text;not null"`
	Author    string    `json:"author"   gorm:"type:varchar(255)"`
	Category  string    `json:"category" gorm:"type:varchar(64)"`
	Active    bool      `json:"active"   gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Quote.
func (Quote) TableName() string { return "quotes" }

// QuoteEngagement records how a user interacted with the day's quote.
// At most one row per (user, day); flags are monotonic (set, never cleared).
type QuoteEngagement struct {
	ID               string    `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID           string    `json:"user_id"  gorm:"type:char(36);not null;index;uniqueIndex:ux_quote_user_day"`
	Day              string    `json:"day"      gorm:"type:char(10);not null;uniqueIndex:ux_quote_user_day"`
	QuoteID          string    `json:"quote_id" gorm:"type:char(36);not null;index"`
	Viewed           bool      `json:"viewed"   gorm:"not null;default:false"`
	Liked            bool      `json:"liked"    gorm:"not null;default:false"`
	Shared           bool      `json:"shared"   gorm:"not null;default:false"`
	TimeSpentSeconds int       `json:"time_spent_seconds" gorm:"not null;default:0"`
	Rating           *int      `json:"rating,omitempty"`
	Archived         bool      `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Quote Quote `json:"-" gorm:"foreignKey:QuoteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QuoteEngagement.
func (QuoteEngagement) TableName() string { return "quote_engagements" }

// TopWord is one entry of a WordFrequencyRow's top-words list.
type TopWord struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
	Sentiment string `json:"sentiment"` // positive|negative|neutral
}

// ThemeScore is a matched theme with its confidence in [0,1].
type ThemeScore struct {
	Theme      string  `json:"theme"`
	Confidence float64 `json:"confidence"`
}

// WordFrequencyRow is the per-event tokenized summary feeding word-cloud and
// sentiment rollups. Department is stamped at write time so a later
// department change does not rewrite history. One row per source event.
type WordFrequencyRow struct {
	ID             string       `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID         string       `json:"user_id"     gorm:"type:char(36);not null;index"`
	SourceKind     string       `json:"source_kind" gorm:"type:varchar(16);not null;index;uniqueIndex:ux_word_source;check:source_kind IN ('journal','survey','checkin')"`
	SourceID       string       `json:"source_id"   gorm:"type:char(36);not null;uniqueIndex:ux_word_source"`
	Day            string       `json:"day"         gorm:"type:char(10);not null;index"`
	Department     string       `json:"department"  gorm:"type:varchar(64);not null;index"`
	TopWords       []TopWord    `json:"top_words"   gorm:"serializer:json"`
	Sentiment      float64      `json:"sentiment"   gorm:"not null;default:0"`
	SentimentLabel string       `json:"sentiment_label" gorm:"type:varchar(16);not null;default:'neutral'"`
	Themes         []ThemeScore `json:"themes,omitempty" gorm:"serializer:json"`
	TotalWords     int          `json:"total_words"  gorm:"not null;default:0"`
	UniqueWords    int          `json:"unique_words" gorm:"not null;default:0"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName returns the database table name for WordFrequencyRow.
func (WordFrequencyRow) TableName() string { return "word_frequency_rows" }

// Notification delivery states.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationDead    = "dead"
)

// Notification is a persisted outbound notification. The dispatcher owns the
// Status/Attempts lifecycle; rows are written post-commit and retried until
// sent or dead-lettered.
type Notification struct {
	ID        string         `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:char(36);not null;index"`
	Kind      string         `json:"kind"    gorm:"type:varchar(32);not null"` // e.g. CHECK_IN_COMPLETED
	Title     string         `json:"title"   gorm:"type:varchar(255);not null"`
	Message   string         `json:"message" gorm:"type:text"`
	Data      map[string]any `json:"data,omitempty" gorm:"serializer:json"`
	Status    string         `json:"status"  gorm:"type:varchar(8);not null;default:'pending';index"`
	Attempts  int            `json:"attempts" gorm:"not null;default:0"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

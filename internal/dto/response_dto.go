package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the structured error payload for every failure. Internal
// stack traces are never exposed.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	UIN       int        `json:"uin,omitempty"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Section   string     `json:"section,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type PanelResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	PanelistName          string    `json:"panelist_name"`
	PanelistEmail         string    `json:"panelist_email"`
	Visibility            string    `json:"visibility"`
	QuestionStageDeadline time.Time `json:"question_stage_deadline"`
	TagStageDeadline      time.Time `json:"tag_stage_deadline"`
	VoteStageDeadline     time.Time `json:"vote_stage_deadline"`
	PresentationDate      time.Time `json:"presentation_date"`
	QuestionsPerStudent   int       `json:"questions_per_student"`
	VideoLink             string    `json:"video_link,omitempty"`
	StartDate             time.Time `json:"start_date"`
	CreatedAt             time.Time `json:"created_at"`
}

type QuestionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PanelID   string    `json:"panel_id"`
	Text      string    `json:"text"`
	VoteScore int       `json:"vote_score"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmittedQuestionResponse acknowledges a single submission.
type SubmittedQuestionResponse struct {
	Message    string `json:"message"`
	QuestionID string `json:"question_id"`
}

// TaggingAssignmentResponse is the caller's slice of the distribution
// artifact: question id -> question text.
type TaggingAssignmentResponse struct {
	Questions map[string]string `json:"questions"`
}

// ClusterResponse is one ranked similarity cluster.
type ClusterResponse struct {
	RepresentativeID   string   `json:"representative_id"`
	RepresentativeText string   `json:"representative_text"`
	MemberIDs          []string `json:"member_ids"`
	Likes              int      `json:"likes"`
	Dislikes           int      `json:"dislikes"`
	NetScore           int      `json:"net_score"`
}

// FinalQuestionResponse is one entry of the final top-10 list.
type FinalQuestionResponse struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type MetricResponse struct {
	UserID             string          `json:"user_id"`
	PanelID            string          `json:"panel_id"`
	QuestionStageInAt  *time.Time      `json:"question_stage_in_at,omitempty"`
	QuestionStageOutAt *time.Time      `json:"question_stage_out_at,omitempty"`
	TagStageInAt       *time.Time      `json:"tag_stage_in_at,omitempty"`
	TagStageOutAt      *time.Time      `json:"tag_stage_out_at,omitempty"`
	VoteStageInAt      *time.Time      `json:"vote_stage_in_at,omitempty"`
	VoteStageOutAt     *time.Time      `json:"vote_stage_out_at,omitempty"`
	TagCount           int             `json:"tag_count"`
	VoteCount          int             `json:"vote_count"`
	QuestionScore      decimal.Decimal `json:"question_score"`
	TagScore           decimal.Decimal `json:"tag_score"`
	VoteScore          decimal.Decimal `json:"vote_score"`
	BonusScore         decimal.Decimal `json:"bonus_score"`
	FinalScore         decimal.Decimal `json:"final_score"`
}

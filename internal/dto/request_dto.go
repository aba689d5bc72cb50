package dto

// GoogleLoginRequest exchanges a Google id token for an internal token.
type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// PanelLoginRequest requests a panelist magic-link login email.
type PanelLoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Token     string `json:"token" binding:"required"` // reCAPTCHA response token
	CallerURL string `json:"callerUrl" binding:"required"`
}

// SubmitQuestionRequest submits a single question to a panel.
type SubmitQuestionRequest struct {
	PanelID  string `json:"panelId" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// BatchSubmitQuestionsRequest submits several questions at once. The batch
// is validated in full before any write.
type BatchSubmitQuestionsRequest struct {
	PanelID   string   `json:"panelId" binding:"required"`
	Questions []string `json:"questions" binding:"required,min=1"`
}

// TaggingRequest records the caller's reactions to assigned questions.
type TaggingRequest struct {
	Liked    []string `json:"liked"`
	Disliked []string `json:"disliked"`
	Flagged  []string `json:"flagged"`
}

// MarkSimilarRequest declares one or more groups of mutually similar
// questions.
type MarkSimilarRequest struct {
	Similar [][]string `json:"similar" binding:"required,min=1"`
}

// VoteOrderRequest is the caller's ranked ballot, most-preferred first.
type VoteOrderRequest struct {
	VoteOrder []string `json:"vote_order" binding:"required,min=1,max=20"`
}

// CreatePanelRequest carries the full panel record. Also used for PATCH,
// which replaces the whole record (no partial merge).
type CreatePanelRequest struct {
	PanelName             string `json:"panelName" binding:"required"`
	PanelDesc             string `json:"panelDesc"`
	Panelist              string `json:"panelist" binding:"required"`
	PanelistEmail         string `json:"panelistEmail" binding:"required,email"`
	Visibility            string `json:"visibility" binding:"required,oneof=public internal"`
	NumberOfQuestions     int    `json:"numberOfQuestions" binding:"required,gt=0"`
	QuestionStageDeadline string `json:"questionStageDeadline" binding:"required"`
	TagStageDeadline      string `json:"tagStageDeadline" binding:"required"`
	VoteStageDeadline     string `json:"voteStageDeadline" binding:"required"`
	PanelPresentationDate string `json:"panelPresentationDate" binding:"required"`
	PanelVideoLink        string `json:"panelVideoLink"`
	PanelStartDate        string `json:"panelStartDate" binding:"required"`
}

// CreateUserRequest creates a single user by admin action.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	LastName string `json:"lastname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	UIN      int    `json:"uin"`
	Role     string `json:"role" binding:"omitempty,oneof=admin student panelist"`
}

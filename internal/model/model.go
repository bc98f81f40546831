package model

import (
	"time"

	"gorm.io/datatypes"
)

// ResponseStatus is the lifecycle state of a candidate response.
type ResponseStatus string

const (
	StatusNew             ResponseStatus = "NEW"
	StatusEvaluated       ResponseStatus = "EVALUATED"
	StatusDialogApproved  ResponseStatus = "DIALOG_APPROVED"
	StatusInterviewTG     ResponseStatus = "INTERVIEW_TELEGRAM"
	StatusInterviewHHChat ResponseStatus = "INTERVIEW_HH_CHAT"
	StatusCompleted       ResponseStatus = "COMPLETED"
	StatusSkipped         ResponseStatus = "SKIPPED"
)

// HRSelectionStatus is the final recruiter-facing recommendation.
type HRSelectionStatus string

const (
	SelectionRecommended    HRSelectionStatus = "RECOMMENDED"
	SelectionNotRecommended HRSelectionStatus = "NOT_RECOMMENDED"
)

type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "ACTIVE"
	ConversationCompleted ConversationStatus = "COMPLETED"
	ConversationCancelled ConversationStatus = "CANCELLED"
)

type Sender string

const (
	SenderCandidate Sender = "CANDIDATE"
	SenderBot       Sender = "BOT"
	SenderAdmin     Sender = "ADMIN"
)

type ContentType string

const (
	ContentText  ContentType = "TEXT"
	ContentVoice ContentType = "VOICE"
)

// Channel identifies a delivery transport for candidate messages.
type Channel string

const (
	ChannelTelegramUsername Channel = "telegram_username"
	ChannelTelegramPhone    Channel = "telegram_phone"
	ChannelTelegramPeer     Channel = "telegram_peer"
	ChannelHHChat           Channel = "hh_chat"
)

// InterviewStatus maps a delivery channel to the interview lifecycle state.
func (c Channel) InterviewStatus() ResponseStatus {
	if c == ChannelHHChat {
		return StatusInterviewHHChat
	}
	return StatusInterviewTG
}

var transitions = map[ResponseStatus][]ResponseStatus{
	StatusNew:             {StatusEvaluated, StatusSkipped},
	StatusEvaluated:       {StatusInterviewTG, StatusInterviewHHChat, StatusDialogApproved, StatusSkipped},
	StatusDialogApproved:  {StatusInterviewTG, StatusInterviewHHChat, StatusSkipped},
	StatusInterviewTG:     {StatusCompleted},
	StatusInterviewHHChat: {StatusCompleted},
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Terminal states have no outgoing transitions.
func (s ResponseStatus) CanTransition(next ResponseStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further processing is allowed for the response.
func (s ResponseStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Interviewing reports whether the response is in an active interview state.
func (s ResponseStatus) Interviewing() bool {
	return s == StatusInterviewTG || s == StatusInterviewHHChat
}

// Vacancy is an open position imported from the job board.
type Vacancy struct {
	ID        string `gorm:"primaryKey"`
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Requirements holds the AI-extracted hiring criteria for a vacancy.
type Requirements struct {
	ID            uint   `gorm:"primaryKey"`
	VacancyID     string `gorm:"uniqueIndex"`
	Mandatory     string
	NiceToHave    string
	TechStack     string
	ExperienceMin int
	ExperienceMax int
	Languages     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Response is one candidate application to a vacancy.
type Response struct {
	ID                string `gorm:"primaryKey"`
	VacancyID         string `gorm:"index"`
	CandidateName     string
	TelegramUsername  string
	Phone             string
	ExternalChatID    string
	Experience        string
	Education         string
	About             string
	Languages         string
	Courses           string
	Status            ResponseStatus     `gorm:"index"`
	HRSelectionStatus *HRSelectionStatus `gorm:"column:hr_selection_status"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ScreeningResult is the resume-vs-requirements verdict, at most one per response.
type ScreeningResult struct {
	ID            uint   `gorm:"primaryKey"`
	ResponseID    string `gorm:"uniqueIndex"`
	Score         int
	DetailedScore int
	Analysis      string
	Greeting      string
	Questions     datatypes.JSONSlice[string]
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuestionAnswer is one completed interview exchange.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ConversationMeta is the typed, versioned metadata payload of a conversation.
// Version is bumped when the shape changes; readers must tolerate older shapes.
type ConversationMeta struct {
	Version         int              `json:"version"`
	QuestionAnswers []QuestionAnswer `json:"questionAnswers"`
	LastQuestion    string           `json:"lastQuestion"`
	PreferredSender string           `json:"preferredSender"`
	Channel         Channel          `json:"channel"`
}

const MetaVersion = 1

// Conversation is one interview thread, keyed by the channel-assigned chat id.
type Conversation struct {
	ID            uint   `gorm:"primaryKey"`
	ChatID        string `gorm:"uniqueIndex"`
	ResponseID    string `gorm:"index"`
	CandidateName string
	Status        ConversationStatus
	Meta          datatypes.JSONType[ConversationMeta]
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuestionNumber returns the 1-based number of the interview question
// currently in flight. The recorded pair count is authoritative.
func (c *Conversation) QuestionNumber() int {
	return len(c.Meta.Data().QuestionAnswers) + 1
}

// Message is one inbound or outbound chat event. Append-only.
type Message struct {
	ID             uint `gorm:"primaryKey"`
	ConversationID uint `gorm:"index"`
	Sender         Sender
	ContentType    ContentType
	Content        string
	FileRef        string
	Transcription  string
	CreatedAt      time.Time
}

// InterviewScoring is the final interview verdict, at most one per conversation.
type InterviewScoring struct {
	ID             uint `gorm:"primaryKey"`
	ConversationID uint `gorm:"uniqueIndex"`
	Score          int
	DetailedScore  int
	Analysis       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionStatus is the moderation state of a question.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionApproved QuestionStatus = "approved"
	QuestionDeclined QuestionStatus = "declined"
	QuestionAnswered QuestionStatus = "answered"
)

// QuestionStatuses lists every known question state in moderation order.
var QuestionStatuses = []QuestionStatus{QuestionPending, QuestionApproved, QuestionDeclined, QuestionAnswered}

// ActiveQueueStatuses are the states that count toward the live queue.
var ActiveQueueStatuses = []QuestionStatus{QuestionPending, QuestionApproved}

// Known reports whether s is one of the four moderation states.
func (s QuestionStatus) Known() bool {
	for _, k := range QuestionStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Question is an attendee question in an event's moderated queue.
type Question struct {
	ID               uuid.UUID      `json:"id"`
	EventID          uuid.UUID      `json:"event_id"`
	ParticipantName  string         `json:"participant_name"`
	ParticipantEmail *string        `json:"participant_email"`
	QuestionText     string         `json:"question_text"`
	QuestionAudioURL *string        `json:"question_audio_url"`
	Language         string         `json:"language"`
	Status           QuestionStatus `json:"status"`
	QueuePosition    int            `json:"queue_position"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	AnsweredAt       *time.Time     `json:"answered_at"`
}

// QuestionPatch carries the moderator-editable fields. AnsweredAt is never bound from
// input; it is set by the status entry action.
type QuestionPatch struct {
	Status        *QuestionStatus `json:"status"`
	QueuePosition *int            `json:"queue_position"`
	AnsweredAt    *time.Time      `json:"-"`
}

// Empty reports whether the patch would change nothing.
func (p QuestionPatch) Empty() bool {
	return p.Status == nil && p.QueuePosition == nil && p.AnsweredAt == nil
}

// Apply copies the set fields onto q.
func (p QuestionPatch) Apply(q *Question) {
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.QueuePosition != nil {
		q.QueuePosition = *p.QueuePosition
	}
	if p.AnsweredAt != nil {
		t := *p.AnsweredAt
		q.AnsweredAt = &t
	}
}

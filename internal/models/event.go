package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive EventStatus = "active"
	EventPaused EventStatus = "paused"
	EventEnded  EventStatus = "ended"
)

// Valid reports whether s is one of the known event states.
func (s EventStatus) Valid() bool {
	switch s {
	case EventActive, EventPaused, EventEnded:
		return true
	}
	return false
}

// EventStatuses lists every event state in display order.
var EventStatuses = []EventStatus{EventActive, EventPaused, EventEnded}

// Event is a live session instance that attendees join by code.
type Event struct {
	ID              uuid.UUID   `json:"id"`
	Code            string      `json:"code"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	OrganizerName   string      `json:"organizer_name"`
	OrganizerEmail  string      `json:"organizer_email"`
	Language        string      `json:"language"`
	MaxParticipants int         `json:"max_participants"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// EventFilter narrows ListEvents. Empty fields match everything.
type EventFilter struct {
	Status EventStatus
	Code   string
}

// EventPatch carries the organizer-editable fields. Nil means unchanged.
type EventPatch struct {
	Title           *string      `json:"title"`
	Description     *string      `json:"description"`
	Status          *EventStatus `json:"status"`
	Language        *string      `json:"language"`
	MaxParticipants *int         `json:"max_participants"`
	UpdatedAt       time.Time    `json:"-"`
}

// Empty reports whether no allow-listed field is set.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Language == nil && p.MaxParticipants == nil
}

// Apply copies the set fields onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Language != nil {
		e.Language = *p.Language
	}
	if p.MaxParticipants != nil {
		e.MaxParticipants = *p.MaxParticipants
	}
	if !p.UpdatedAt.IsZero() {
		e.UpdatedAt = p.UpdatedAt
	}
}

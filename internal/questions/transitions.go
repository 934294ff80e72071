package questions

import (
	"strings"
	"time"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
)

// entryActions run whenever an update sets a question to the keyed status, whatever the
// previous status was. Setting answered again re-stamps answered_at.
var entryActions = map[models.QuestionStatus]func(p *models.QuestionPatch, now time.Time){
	models.QuestionAnswered: func(p *models.QuestionPatch, now time.Time) {
		p.AnsweredAt = &now
	},
}

// moderationVerbs map the organizer's actions to target statuses.
var moderationVerbs = map[string]models.QuestionStatus{
	"approve": models.QuestionApproved,
	"decline": models.QuestionDeclined,
	"answer":  models.QuestionAnswered,
	"requeue": models.QuestionPending,
}

// StatusForAction returns the status a moderation verb (approve, decline, answer, requeue) moves
// a question to.
func StatusForAction(verb string) (models.QuestionStatus, bool) {
	s, ok := moderationVerbs[strings.ToLower(strings.TrimSpace(verb))]
	return s, ok
}

// enterStatus validates the patch's target status and runs its entry action. Unknown statuses
// pass through unless strict is set.
func enterStatus(p *models.QuestionPatch, now time.Time, strict bool) error {
	if p.Status == nil {
		return nil
	}
	if strict && !p.Status.Known() {
		return apperr.InvalidInput(MsgInvalidStatus)
	}
	if enter, ok := entryActions[*p.Status]; ok {
		enter(p, now)
	}
	return nil
}

// parseStatusFilter splits "pending,approved" into statuses. Blank input means no filter.
func parseStatusFilter(raw string, strict bool) ([]models.QuestionStatus, error) {
	var out []models.QuestionStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s := models.QuestionStatus(part)
		if strict && !s.Known() {
			return nil, apperr.InvalidInput(MsgInvalidStatus)
		}
		out = append(out, s)
	}
	return out, nil
}

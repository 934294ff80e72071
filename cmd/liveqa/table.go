package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aura-webinar/liveqa/internal/models"
)

const maxQuestionWidth = 60

func renderQueue(list []models.Question, now time.Time) string {
	if len(list) == 0 {
		return "No questions yet."
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Status", "From", "Question", "Asked", "ID"})
	for _, q := range list {
		tw.AppendRow(table.Row{
			strconv.Itoa(q.QueuePosition),
			string(q.Status),
			q.ParticipantName,
			truncate(q.QuestionText, maxQuestionWidth),
			humanize.RelTime(q.SubmittedAt, now, "ago", "from now"),
			q.ID.String(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func renderSession(s *models.AudioSession, language string, now time.Time) string {
	if s == nil {
		return "Waiting for the speaker..."
	}
	line := s.Transcription
	switch strings.ToLower(language) {
	case "pl":
		if s.TranslationPL != "" {
			line = s.TranslationPL
		}
	case "en":
		if s.TranslationEN != "" {
			line = s.TranslationEN
		}
	}
	return fmt.Sprintf("%s (%s): %s", s.SpeakerName, humanize.RelTime(s.StartedAt, now, "ago", "from now"), line)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

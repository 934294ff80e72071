package transcription

import (
	"context"
	"math/rand"
	"time"
)

// cannedLines pairs each English demo line with its Polish translation.
var cannedLines = [][2]string{
	{
		"Welcome everyone to today's presentation. We'll be discussing the future of artificial intelligence in business applications.",
		"Witajcie wszystkich na dzisiejszej prezentacji. Będziemy omawiać przyszłość sztucznej inteligencji w aplikacjach biznesowych.",
	},
	{
		"Today we're going to cover three main topics: machine learning integration, automation benefits, and implementation strategies.",
		"Dzisiaj omówimy trzy główne tematy: integrację uczenia maszynowego, korzyści z automatyzacji i strategie wdrażania.",
	},
	{
		"Let's start with the first question from our audience. Please feel free to submit your questions through the platform.",
		"Zacznijmy od pierwszego pytania z naszej publiczności. Prosimy o swobodne zadawanie pytań poprzez platformę.",
	},
	{
		"That's an excellent question about data privacy. Security is indeed our top priority when implementing AI solutions.",
		"To doskonałe pytanie o prywatność danych. Bezpieczeństwo jest rzeczywiście naszym najwyższym priorytetem przy wdrażaniu rozwiązań AI.",
	},
	{
		"Thank you all for participating. We hope this session was informative and helpful for your business needs.",
		"Dziękujemy wszystkim za udział. Mamy nadzieję, że ta sesja była informatywna i pomocna dla Waszych potrzeb biznesowych.",
	},
}

// CannedTranscriber ignores the audio and returns a random line from a fixed English/Polish
// corpus after a simulated processing delay. English output equals the transcript.
type CannedTranscriber struct {
	delay time.Duration
	pick  func(n int) int
}

// NewCannedTranscriber creates a demo transcriber that waits delay before answering.
func NewCannedTranscriber(delay time.Duration) *CannedTranscriber {
	return &CannedTranscriber{delay: delay, pick: rand.Intn}
}

// WithPicker replaces the random line selector; used by tests.
func (c *CannedTranscriber) WithPicker(pick func(n int) int) *CannedTranscriber {
	c.pick = pick
	return c
}

// Transcribe waits for the configured delay (or ctx) and returns a corpus line.
func (c *CannedTranscriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	line := cannedLines[c.pick(len(cannedLines))]
	res := &Result{Transcription: line[0], Translations: make(map[string]string, len(req.TargetLanguages))}
	for _, target := range req.TargetLanguages {
		switch target {
		case "en":
			res.Translations["en"] = line[0]
		case "pl":
			res.Translations["pl"] = line[1]
		}
	}
	return res, nil
}

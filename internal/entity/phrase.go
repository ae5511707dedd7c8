package entity

import (
	"strings"
	"time"
)

// Phrase is a bilingual flashcard entry. Learn sessions only read it.
type Phrase struct {
	ID             int64             `json:"id"`
	Notebook       string            `json:"notebook"`
	SourceText     string            `json:"source_text"`
	TargetText     string            `json:"target_text"`
	SourceLanguage Language          `json:"source_language"`
	TargetLanguage Language          `json:"target_language"`
	Difficulty     string            `json:"difficulty,omitempty"`
	Audio          AudioAvailability `json:"audio"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AudioAvailability flags which sides of a phrase have recorded audio.
type AudioAvailability struct {
	Source bool `json:"source"`
	Target bool `json:"target"`
}

// Prompt returns the side shown to the learner for the given direction.
func (p Phrase) Prompt(d Direction) string {
	if d == TargetToSource {
		return p.TargetText
	}
	return p.SourceText
}

// Answer returns the side the learner is expected to produce.
func (p Phrase) Answer(d Direction) string {
	if d == TargetToSource {
		return p.SourceText
	}
	return p.TargetText
}

// Normalize ensures defaults & constraints before persistence.
func (p *Phrase) Normalize(now time.Time) {
	p.SourceText = strings.TrimSpace(p.SourceText)
	p.TargetText = strings.TrimSpace(p.TargetText)
	p.Notebook = strings.TrimSpace(p.Notebook)
	p.Difficulty = strings.ToLower(strings.TrimSpace(p.Difficulty))
	if p.SourceLanguage.Code() == "" {
		p.SourceLanguage = LanguageEnglish
	}
	if p.TargetLanguage.Code() == "" {
		p.TargetLanguage = LanguagePolish
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

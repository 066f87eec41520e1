package moderation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
)

const (
	// MaxTextBytes is the leading window of a text object that gets analysed.
	MaxTextBytes = 100_000
	// FallbackLanguage is used when no dominant language is detected.
	FallbackLanguage = "en"
)

type TextDetector struct {
	analyzer infrastructure.TextAnalyzer
}

func NewTextDetector(analyzer infrastructure.TextAnalyzer) *TextDetector {
	return &TextDetector{analyzer}
}

// Detect runs language, PII and sentiment detection one after another. Any
// failure discards the partial analysis.
func (d *TextDetector) Detect(ctx context.Context, text string) (entity.TextAnalysis, error) {
	text = TruncateText(text, MaxTextBytes)

	languages, err := d.analyzer.DetectDominantLanguage(ctx, text)
	if err != nil {
		return entity.TextAnalysis{}, fmt.Errorf("TextDetector - Detect - d.analyzer.DetectDominantLanguage: %w: %w", errs.ErrDetectionService, err)
	}

	language := FallbackLanguage
	best := -1.0
	for _, l := range languages {
		if l.Code != "" && l.Score > best {
			language, best = l.Code, l.Score
		}
	}

	entities, err := d.analyzer.DetectPiiEntities(ctx, text, language)
	if err != nil {
		return entity.TextAnalysis{}, fmt.Errorf("TextDetector - Detect - d.analyzer.DetectPiiEntities: %w: %w", errs.ErrDetectionService, err)
	}

	sentiment, err := d.analyzer.DetectSentiment(ctx, text, language)
	if err != nil {
		return entity.TextAnalysis{}, fmt.Errorf("TextDetector - Detect - d.analyzer.DetectSentiment: %w: %w", errs.ErrDetectionService, err)
	}

	pii := make([]entity.PiiFinding, 0, len(entities))
	for _, e := range entities {
		finding := entity.PiiFinding{Type: e.Type}
		if e.Score != nil {
			score := clamp(*e.Score, 0, 1)
			finding.Score = &score
		}
		pii = append(pii, finding)
	}

	return entity.TextAnalysis{
		Language: language,
		PII:      pii,
		Sentiment: entity.SentimentResult{
			Label: sentiment.Label,
			Scores: entity.SentimentScores{
				Positive: clamp(sentiment.Positive, 0, 1),
				Negative: clamp(sentiment.Negative, 0, 1),
				Neutral:  clamp(sentiment.Neutral, 0, 1),
				Mixed:    clamp(sentiment.Mixed, 0, 1),
			},
		},
	}, nil
}

// TruncateText replaces invalid UTF-8 sequences with U+FFFD and cuts the
// result to at most limit bytes without splitting a rune.
func TruncateText(text string, limit int) string {
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	if len(text) <= limit {
		return text
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut]
}

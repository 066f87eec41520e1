package comprehend

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

// SentimentMaxBytes is the largest document the sentiment call accepts.
const SentimentMaxBytes = 5000

type API interface {
	DetectDominantLanguage(ctx context.Context, in *comprehend.DetectDominantLanguageInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error)
	DetectPiiEntities(ctx context.Context, in *comprehend.DetectPiiEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectPiiEntitiesOutput, error)
	DetectSentiment(ctx context.Context, in *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

type TextAnalyzer struct {
	api API
}

func New(api API) *TextAnalyzer {
	return &TextAnalyzer{api}
}

// DetectDominantLanguage returns languages in the service's order.
func (a *TextAnalyzer) DetectDominantLanguage(ctx context.Context, text string) ([]dto.DetectedLanguage, error) {
	out, err := a.api.DetectDominantLanguage(ctx, &comprehend.DetectDominantLanguageInput{
		Text: aws.String(text),
	})
	if err != nil {
		return nil, fmt.Errorf("TextAnalyzer - DetectDominantLanguage - a.api.DetectDominantLanguage: %w", err)
	}

	languages := make([]dto.DetectedLanguage, 0, len(out.Languages))
	for _, l := range out.Languages {
		languages = append(languages, dto.DetectedLanguage{
			Code:  aws.ToString(l.LanguageCode),
			Score: float64(aws.ToFloat32(l.Score)),
		})
	}

	return languages, nil
}

func (a *TextAnalyzer) DetectPiiEntities(ctx context.Context, text, languageCode string) ([]dto.PiiEntity, error) {
	out, err := a.api.DetectPiiEntities(ctx, &comprehend.DetectPiiEntitiesInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(languageCode),
	})
	if err != nil {
		return nil, fmt.Errorf("TextAnalyzer - DetectPiiEntities - a.api.DetectPiiEntities: %w", err)
	}

	entities := make([]dto.PiiEntity, 0, len(out.Entities))
	for _, e := range out.Entities {
		entity := dto.PiiEntity{Type: string(e.Type)}
		if e.Score != nil {
			score := float64(*e.Score)
			entity.Score = &score
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// DetectSentiment analyses only the leading SentimentMaxBytes of text.
func (a *TextAnalyzer) DetectSentiment(ctx context.Context, text, languageCode string) (dto.Sentiment, error) {
	out, err := a.api.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(leadingWindow(text, SentimentMaxBytes)),
		LanguageCode: types.LanguageCode(languageCode),
	})
	if err != nil {
		return dto.Sentiment{}, fmt.Errorf("TextAnalyzer - DetectSentiment - a.api.DetectSentiment: %w", err)
	}

	res := dto.Sentiment{Label: string(out.Sentiment)}
	if s := out.SentimentScore; s != nil {
		res.Positive = float64(aws.ToFloat32(s.Positive))
		res.Negative = float64(aws.ToFloat32(s.Negative))
		res.Neutral = float64(aws.ToFloat32(s.Neutral))
		res.Mixed = float64(aws.ToFloat32(s.Mixed))
	}

	return res, nil
}

func leadingWindow(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut]
}

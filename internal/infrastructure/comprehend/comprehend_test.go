package comprehend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sentimentIn *comprehend.DetectSentimentInput
	piiIn       *comprehend.DetectPiiEntitiesInput
	err         error
}

func (f *fakeAPI) DetectDominantLanguage(_ context.Context, _ *comprehend.DetectDominantLanguageInput, _ ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &comprehend.DetectDominantLanguageOutput{Languages: []types.DominantLanguage{
		{LanguageCode: aws.String("en"), Score: aws.Float32(0.5)},
		{LanguageCode: aws.String("es"), Score: aws.Float32(0.25)},
	}}, nil
}

func (f *fakeAPI) DetectPiiEntities(_ context.Context, in *comprehend.DetectPiiEntitiesInput, _ ...func(*comprehend.Options)) (*comprehend.DetectPiiEntitiesOutput, error) {
	f.piiIn = in
	return &comprehend.DetectPiiEntitiesOutput{Entities: []types.PiiEntity{
		{Type: types.PiiEntityTypeSsn, Score: aws.Float32(0.5)},
		{Type: types.PiiEntityTypeEmail},
	}}, nil
}

func (f *fakeAPI) DetectSentiment(_ context.Context, in *comprehend.DetectSentimentInput, _ ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
	f.sentimentIn = in
	return &comprehend.DetectSentimentOutput{
		Sentiment: types.SentimentTypeNegative,
		SentimentScore: &types.SentimentScore{
			Positive: aws.Float32(0.25),
			Negative: aws.Float32(0.5),
			Neutral:  aws.Float32(0.125),
			Mixed:    aws.Float32(0.125),
		},
	}, nil
}

func TestDetectDominantLanguageKeepsOrder(t *testing.T) {
	langs, err := New(&fakeAPI{}).DetectDominantLanguage(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []dto.DetectedLanguage{{Code: "en", Score: 0.5}, {Code: "es", Score: 0.25}}, langs)
}

func TestDetectDominantLanguageError(t *testing.T) {
	boom := errors.New("unavailable")

	_, err := New(&fakeAPI{err: boom}).DetectDominantLanguage(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)
}

func TestDetectPiiEntities(t *testing.T) {
	api := &fakeAPI{}

	entities, err := New(api).DetectPiiEntities(context.Background(), "my ssn", "en")
	require.NoError(t, err)

	require.Len(t, entities, 2)
	assert.Equal(t, "SSN", entities[0].Type)
	require.NotNil(t, entities[0].Score)
	assert.Equal(t, 0.5, *entities[0].Score)
	assert.Equal(t, "EMAIL", entities[1].Type)
	assert.Nil(t, entities[1].Score)
	assert.Equal(t, types.LanguageCode("en"), api.piiIn.LanguageCode)
}

func TestDetectSentimentTruncatesInput(t *testing.T) {
	api := &fakeAPI{}
	text := strings.Repeat("a", SentimentMaxBytes-1) + "é" + "tail"

	res, err := New(api).DetectSentiment(context.Background(), text, "en")
	require.NoError(t, err)

	assert.Equal(t, dto.Sentiment{Label: "NEGATIVE", Positive: 0.25, Negative: 0.5, Neutral: 0.125, Mixed: 0.125}, res)
	assert.Equal(t, strings.Repeat("a", SentimentMaxBytes-1), aws.ToString(api.sentimentIn.Text))
}

func TestLeadingWindow(t *testing.T) {
	assert.Equal(t, "short", leadingWindow("short", 10))
	assert.Equal(t, "ab", leadingWindow("abé", 3))
	assert.Equal(t, "abé", leadingWindow("abéd", 4))
}

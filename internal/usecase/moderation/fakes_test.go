package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
)

var errBoom = errors.New("boom")

type storedObject struct {
	contentType string
	body        []byte
}

type fakeObjects struct {
	objects map[string]storedObject
	tags    map[string]string
	copies  map[string]string // dst -> src
	puts    map[string][]byte
	calls   []string

	headErr  error
	fetchErr error
	tagErr   error
	copyErr  error
	putErr   error

	afterTag func()
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		objects: map[string]storedObject{},
		tags:    map[string]string{},
		copies:  map[string]string{},
		puts:    map[string][]byte{},
	}
}

func (f *fakeObjects) add(key, contentType, body string) {
	f.objects[key] = storedObject{contentType: contentType, body: []byte(body)}
}

func (f *fakeObjects) sideEffects() int {
	return len(f.tags) + len(f.copies) + len(f.puts)
}

func (f *fakeObjects) Head(_ context.Context, key string) (entity.ObjectMeta, error) {
	f.calls = append(f.calls, "head")
	if f.headErr != nil {
		return entity.ObjectMeta{}, f.headErr
	}

	obj, ok := f.objects[key]
	if !ok {
		return entity.ObjectMeta{}, errs.ErrRecordNotFound
	}

	return entity.ObjectMeta{ContentType: obj.contentType, Size: int64(len(obj.body))}, nil
}

func (f *fakeObjects) Fetch(_ context.Context, key string, limit int64) ([]byte, error) {
	f.calls = append(f.calls, "fetch")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	body := f.objects[key].body
	if int64(len(body)) > limit {
		body = body[:limit]
	}

	return body, nil
}

func (f *fakeObjects) Download(_ context.Context, key string, limit int64) ([]byte, error) {
	f.calls = append(f.calls, "download")

	if body, ok := f.puts[key]; ok {
		return body, nil
	}

	obj, ok := f.objects[key]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	if int64(len(obj.body)) > limit {
		return nil, errs.ErrObjectTooLarge
	}

	return obj.body, nil
}

func (f *fakeObjects) PutTag(_ context.Context, key, tagKey, tagValue string) error {
	f.calls = append(f.calls, "tag")
	if f.tagErr != nil {
		return f.tagErr
	}

	f.tags[key] = tagKey + "=" + tagValue
	if f.afterTag != nil {
		f.afterTag()
	}

	return nil
}

func (f *fakeObjects) Copy(_ context.Context, srcKey, dstKey string) error {
	f.calls = append(f.calls, "copy")
	if f.copyErr != nil {
		return f.copyErr
	}

	f.copies[dstKey] = srcKey

	return nil
}

func (f *fakeObjects) Put(_ context.Context, key string, body []byte, _ string) error {
	f.calls = append(f.calls, "put")
	if f.putErr != nil {
		return f.putErr
	}

	f.puts[key] = body

	return nil
}

type fakeImageAnalyzer struct {
	labels []dto.ModerationLabel
	err    error

	calls int
	last  dto.ImageInput
}

func (f *fakeImageAnalyzer) DetectModerationLabels(_ context.Context, img dto.ImageInput, _ float64) ([]dto.ModerationLabel, error) {
	f.calls++
	f.last = img

	return f.labels, f.err
}

type fakeNormalizer struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeNormalizer) Normalize(_ context.Context, _ []byte, _ int) ([]byte, error) {
	f.calls++

	return f.out, f.err
}

type fakeTextAnalyzer struct {
	languages []dto.DetectedLanguage
	pii       []dto.PiiEntity
	sentiment dto.Sentiment

	languageErr  error
	piiErr       error
	sentimentErr error

	calls        []string
	lastText     string
	lastLanguage string
}

func (f *fakeTextAnalyzer) DetectDominantLanguage(_ context.Context, text string) ([]dto.DetectedLanguage, error) {
	f.calls = append(f.calls, "language")
	f.lastText = text

	return f.languages, f.languageErr
}

func (f *fakeTextAnalyzer) DetectPiiEntities(_ context.Context, _, languageCode string) ([]dto.PiiEntity, error) {
	f.calls = append(f.calls, "pii")
	f.lastLanguage = languageCode

	return f.pii, f.piiErr
}

func (f *fakeTextAnalyzer) DetectSentiment(_ context.Context, _, languageCode string) (dto.Sentiment, error) {
	f.calls = append(f.calls, "sentiment")
	if f.lastLanguage != languageCode {
		return dto.Sentiment{}, fmt.Errorf("language mismatch: %s != %s", f.lastLanguage, languageCode)
	}

	return f.sentiment, f.sentimentErr
}

func ptr[T any](v T) *T {
	return &v
}

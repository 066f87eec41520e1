package rekognition

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type API interface {
	DetectModerationLabels(
		ctx context.Context,
		in *rekognition.DetectModerationLabelsInput,
		optFns ...func(*rekognition.Options),
	) (*rekognition.DetectModerationLabelsOutput, error)
}

type ImageModerator struct {
	api API
}

func New(api API) *ImageModerator {
	return &ImageModerator{api}
}

func (m *ImageModerator) DetectModerationLabels(
	ctx context.Context,
	img dto.ImageInput,
	minConfidence float64,
) ([]dto.ModerationLabel, error) {
	image := &types.Image{}
	if img.Bytes != nil {
		image.Bytes = img.Bytes
	} else {
		image.S3Object = &types.S3Object{
			Bucket: aws.String(img.Bucket),
			Name:   aws.String(img.Key),
		}
	}

	out, err := m.api.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         image,
		MinConfidence: aws.Float32(float32(minConfidence)),
	})
	if err != nil {
		return nil, fmt.Errorf("ImageModerator - DetectModerationLabels - m.api.DetectModerationLabels: %w", err)
	}

	labels := make([]dto.ModerationLabel, 0, len(out.ModerationLabels))
	for _, l := range out.ModerationLabels {
		labels = append(labels, dto.ModerationLabel{
			Name:       aws.ToString(l.Name),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}

	return labels, nil
}

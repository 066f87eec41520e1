package dto

// ImageInput points the image analyzer either at an object in the bucket or
// at an inline payload. Bytes wins when set.
type ImageInput struct {
	Bucket string
	Key    string
	Bytes  []byte
}

// Raw analyzer outputs, before normalisation into entity types.
type (
	ModerationLabel struct {
		Name       string
		Confidence float64
	}

	DetectedLanguage struct {
		Code  string
		Score float64
	}

	PiiEntity struct {
		Type  string
		Score *float64
	}

	Sentiment struct {
		Label    string
		Positive float64
		Negative float64
		Neutral  float64
		Mixed    float64
	}
)

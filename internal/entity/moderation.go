package entity

type DetectionLabel struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"` // [0,100]
}

type PiiFinding struct {
	Type  string   `json:"Type"`
	Score *float64 `json:"Score"` // [0,1]
}

type SentimentScores struct {
	Positive float64 `json:"Positive"`
	Negative float64 `json:"Negative"`
	Neutral  float64 `json:"Neutral"`
	Mixed    float64 `json:"Mixed"`
}

type SentimentResult struct {
	Label  string
	Scores SentimentScores
}

// TextAnalysis is the combined output of the three text detections.
type TextAnalysis struct {
	Language  string
	PII       []PiiFinding
	Sentiment SentimentResult
}

// ModerationRecord is the audit artifact written once per moderated object.
// Its JSON field names are the report format read by downstream consumers.
type ModerationRecord struct {
	Bucket          string           `json:"Bucket"`
	Key             string           `json:"Key"`
	ContentType     string           `json:"ContentType"`
	Language        *string          `json:"Language"`
	ImageLabels     []DetectionLabel `json:"ImageLabels"`
	Pii             []PiiFinding     `json:"Pii"`
	Note            *string          `json:"Note"`
	Sentiment       *string          `json:"Sentiment"`
	SentimentScores *SentimentScores `json:"SentimentScores"`
}

func (r *ModerationRecord) SetTextAnalysis(a TextAnalysis) {
	language := a.Language
	label := a.Sentiment.Label
	scores := a.Sentiment.Scores

	r.Language = &language
	r.Pii = a.PII
	r.Sentiment = &label
	r.SentimentScores = &scores
}

// ThresholdConfig is loaded once at startup and never mutated afterwards.
type ThresholdConfig struct {
	MinImageConfidence float64 // percentage
	MinPiiScore        float64 // fraction
}

const (
	VerdictApproved = "approved"
	VerdictRejected = "rejected"
)

// Verdict is always recomputed from a ModerationRecord, never stored on its own.
type Verdict struct {
	Flagged bool
}

func (v Verdict) Status() string {
	if v.Flagged {
		return VerdictRejected
	}

	return VerdictApproved
}

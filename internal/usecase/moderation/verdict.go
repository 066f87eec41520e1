package moderation

import (
	"path"
	"strings"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
)

// Evaluate derives the verdict from the raw scores of a record. Sentiment and
// language never take part in it. Scores are compared at the float32 precision
// the detection services report them in.
func Evaluate(category entity.Category, record *entity.ModerationRecord, t entity.ThresholdConfig) entity.Verdict {
	if record == nil {
		return entity.Verdict{}
	}

	switch category {
	case entity.CategoryImage:
		for _, label := range record.ImageLabels {
			if atLeast(label.Confidence, t.MinImageConfidence) {
				return entity.Verdict{Flagged: true}
			}
		}
	case entity.CategoryText:
		for _, finding := range record.Pii {
			// a finding without a score cannot cross the threshold
			if finding.Score != nil && atLeast(*finding.Score, t.MinPiiScore) {
				return entity.Verdict{Flagged: true}
			}
		}
	}

	return entity.Verdict{}
}

func atLeast(score, threshold float64) bool {
	return float32(score) >= float32(threshold)
}

// CategoryOf classifies a stored record the same way the pipeline classified its object.
func CategoryOf(record *entity.ModerationRecord) entity.Category {
	return Classify(record.ContentType, strings.ToLower(path.Ext(record.Key)))
}

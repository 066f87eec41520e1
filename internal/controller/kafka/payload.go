package kafka

import (
	"fmt"
	"net/url"
	"strings"
)

// S3EventNotification is the bucket notification document published for
// object events (AWS S3 and MinIO share the format).
type S3EventNotification struct {
	Records []S3EventRecord `json:"Records"`
}

type S3EventRecord struct {
	EventName string `json:"eventName"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
		} `json:"object"`
	} `json:"s3"`
}

// ObjectCreated reports whether the record announces a new object. Records
// without an event name are treated as creations.
func (r S3EventRecord) ObjectCreated() bool {
	return r.EventName == "" || strings.Contains(r.EventName, "ObjectCreated")
}

// ObjectKey returns the decoded object key. Keys arrive form-encoded.
func (r S3EventRecord) ObjectKey() (string, error) {
	key, err := url.QueryUnescape(r.S3.Object.Key)
	if err != nil {
		return "", fmt.Errorf("S3EventRecord - ObjectKey - url.QueryUnescape: %w", err)
	}

	return key, nil
}

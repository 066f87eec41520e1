package entity

import (
	"path"
	"strings"
)

// ObjectReference identifies the uploaded object under moderation.
type ObjectReference struct {
	Bucket      string
	Key         string
	ContentType string
	Extension   string // lower-cased, with the leading dot
}

func NewObjectReference(bucket, key, contentType string) ObjectReference {
	return ObjectReference{
		Bucket:      bucket,
		Key:         key,
		ContentType: contentType,
		Extension:   strings.ToLower(path.Ext(key)),
	}
}

// ObjectMeta is the result of a metadata lookup.
type ObjectMeta struct {
	ContentType string
	Size        int64
}

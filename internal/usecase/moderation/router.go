package moderation

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/repo"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
)

// ModerationTagKey is the tag carrying the verdict on the source object.
const ModerationTagKey = "moderation"

// Router tags the source object with the verdict and copies it under the
// approved or quarantine prefix. The source is never removed.
type Router struct {
	objects          repo.ObjectRepo
	approvedPrefix   string
	quarantinePrefix string
}

func NewRouter(objects repo.ObjectRepo, approvedPrefix, quarantinePrefix string) *Router {
	return &Router{
		objects:          objects,
		approvedPrefix:   approvedPrefix,
		quarantinePrefix: quarantinePrefix,
	}
}

func (r *Router) Destination(key string, verdict entity.Verdict) string {
	if verdict.Flagged {
		return r.quarantinePrefix + key
	}

	return r.approvedPrefix + key
}

// Route is not transactional: when the copy fails after a successful tag the
// object stays tagged and the error is returned as is.
func (r *Router) Route(ctx context.Context, ref entity.ObjectReference, verdict entity.Verdict) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("Router - Route - before tag: %w", err)
	}

	err := r.objects.PutTag(ctx, ref.Key, ModerationTagKey, verdict.Status())
	if err != nil {
		return "", fmt.Errorf("Router - Route - r.objects.PutTag: %w: %w", errs.ErrRouting, err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("Router - Route - before copy: %w", err)
	}

	dst := r.Destination(ref.Key, verdict)

	err = r.objects.Copy(ctx, ref.Key, dst)
	if err != nil {
		return "", fmt.Errorf("Router - Route - r.objects.Copy: %w: %w", errs.ErrRouting, err)
	}

	return dst, nil
}

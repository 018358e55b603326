package repo

import (
	"context"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
)

// ClassifierRepo is the semantic classification interface. One external call
// per invocation, no retries, no caching. A nil ClassifierRepo means the
// semantic layer is disabled and only the rule engine runs.
//
// Errors are returned as-is; the pipeline owns the fail-open policy that
// converts them into a non-violation result.
type ClassifierRepo interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

package data

import (
	"context"

	"github.com/anthropics/feishu-guard/classifier"
	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// classifierRepo implements the semantic classifier repository on top of the
// OpenAI-compatible client, embedding the group rules into each prompt.
type classifierRepo struct {
	client *classifier.Client
	rules  string
}

// NewClassifierRepo creates a classifier repository. Returns nil when no
// client is configured, which disables the semantic layer.
func NewClassifierRepo(client *classifier.Client, rules string) repo.ClassifierRepo {
	if client == nil {
		return nil
	}
	return &classifierRepo{client: client, rules: rules}
}

func (r *classifierRepo) Classify(ctx context.Context, text string) (domain.Classification, error) {
	result, err := r.client.Classify(ctx, text, r.rules)
	if err != nil {
		return domain.Classification{}, err
	}
	return domain.Classification{Violation: result.Violation, Reason: result.Reason}, nil
}

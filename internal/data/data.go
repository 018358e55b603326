package data

import (
	"github.com/anthropics/feishu-guard/classifier"
	"github.com/anthropics/feishu-guard/feishu"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Platform   repo.PlatformRepo
	State      repo.StateRepo
	Classifier repo.ClassifierRepo
	Audit      repo.AuditRepo
}

// NewRepositories creates all repositories. classifierClient may be nil
// (semantic layer disabled); auditDBPath may be empty (auditing disabled).
func NewRepositories(
	feishuClient *feishu.Client,
	classifierClient *classifier.Client,
	rulesText string,
	auditDBPath string,
) (*Repositories, error) {
	var audit repo.AuditRepo
	if auditDBPath != "" {
		var err error
		audit, err = NewAuditRepo(auditDBPath)
		if err != nil {
			return nil, err
		}
	}

	return &Repositories{
		Platform:   NewFeishuRepo(feishuClient),
		State:      NewStateRepo(),
		Classifier: NewClassifierRepo(classifierClient, rulesText),
		Audit:      audit,
	}, nil
}

package conf

import (
	"os"
	"strconv"
	"strings"

	"github.com/anthropics/feishu-guard/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// Feishu configuration
	Feishu FeishuConfig

	// Classifier configuration (optional; empty key disables the semantic layer)
	Classifier ClassifierConfig

	// Guard configuration
	Guard GuardConfig

	// HTTP liveness/metrics server port
	Port int

	// Audit log DB path (optional; empty disables auditing)
	AuditDBPath string

	// Debug mode
	Debug bool
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// ClassifierConfig contains the semantic classifier configuration
type ClassifierConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GuardConfig contains moderation configuration
type GuardConfig struct {
	GroupID        string
	ArchiveChatID  string
	AdminIDs       []string
	ForbiddenWords []string
	DangerousWords []string
}

// defaultForbiddenWords and defaultDangerousWords apply when the env lists
// are unset. Deployments are expected to override both.
var (
	defaultForbiddenWords = []string{"spam"}
	defaultDangerousWords = []string{"threat", "fraud", "blackmail", "scam"}
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	port := 3000
	if val := os.Getenv("PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			port = parsed
		}
	}

	forbidden := splitList(os.Getenv("FORBIDDEN_WORDS"))
	if len(forbidden) == 0 {
		forbidden = defaultForbiddenWords
	}
	dangerous := splitList(os.Getenv("DANGEROUS_WORDS"))
	if len(dangerous) == 0 {
		dangerous = defaultDangerousWords
	}

	return &Config{
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Classifier: ClassifierConfig{
			APIKey:  os.Getenv("CLASSIFIER_API_KEY"),
			Model:   os.Getenv("CLASSIFIER_MODEL"),
			BaseURL: os.Getenv("CLASSIFIER_BASE_URL"),
		},
		Guard: GuardConfig{
			GroupID:        os.Getenv("GROUP_ID"),
			ArchiveChatID:  os.Getenv("ARCHIVE_CHAT_ID"),
			AdminIDs:       splitList(os.Getenv("ADMIN_IDS")),
			ForbiddenWords: forbidden,
			DangerousWords: dangerous,
		},
		Port:        port,
		AuditDBPath: os.Getenv("AUDIT_DB_PATH"),
		Debug:       os.Getenv("DEBUG") == "true",
	}
}

// ToGuardConfig converts to the usecase guard configuration
func (c *Config) ToGuardConfig() usecase.GuardConfig {
	return usecase.GuardConfig{
		GroupID:       c.Guard.GroupID,
		ArchiveChatID: c.Guard.ArchiveChatID,
		AdminIDs:      c.Guard.AdminIDs,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
	}
	if c.Guard.GroupID == "" {
		return &ConfigError{Field: "GROUP_ID", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// splitList parses a comma-separated env value, dropping empty items.
func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

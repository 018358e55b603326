package conf

import (
	"errors"
	"reflect"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FEISHU_APP_ID", "FEISHU_APP_SECRET",
		"CLASSIFIER_API_KEY", "CLASSIFIER_MODEL", "CLASSIFIER_BASE_URL",
		"GROUP_ID", "ARCHIVE_CHAT_ID", "ADMIN_IDS",
		"FORBIDDEN_WORDS", "DANGEROUS_WORDS",
		"PORT", "AUDIT_DB_PATH", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFromEnv()
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if !reflect.DeepEqual(cfg.Guard.ForbiddenWords, defaultForbiddenWords) {
		t.Errorf("ForbiddenWords = %v", cfg.Guard.ForbiddenWords)
	}
	if !reflect.DeepEqual(cfg.Guard.DangerousWords, defaultDangerousWords) {
		t.Errorf("DangerousWords = %v", cfg.Guard.DangerousWords)
	}
	if len(cfg.Guard.AdminIDs) != 0 {
		t.Errorf("AdminIDs = %v, want empty", cfg.Guard.AdminIDs)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEISHU_APP_ID", "cli_app")
	t.Setenv("FEISHU_APP_SECRET", "secret")
	t.Setenv("GROUP_ID", "oc_group")
	t.Setenv("ARCHIVE_CHAT_ID", "oc_archive")
	t.Setenv("ADMIN_IDS", "ou_a, ou_b,")
	t.Setenv("FORBIDDEN_WORDS", "casino,loan")
	t.Setenv("DANGEROUS_WORDS", "threat")
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "true")

	cfg := LoadFromEnv()
	if cfg.Feishu.AppID != "cli_app" || cfg.Feishu.AppSecret != "secret" {
		t.Errorf("Feishu = %+v", cfg.Feishu)
	}
	if cfg.Guard.GroupID != "oc_group" || cfg.Guard.ArchiveChatID != "oc_archive" {
		t.Errorf("Guard = %+v", cfg.Guard)
	}
	if !reflect.DeepEqual(cfg.Guard.AdminIDs, []string{"ou_a", "ou_b"}) {
		t.Errorf("AdminIDs = %v", cfg.Guard.AdminIDs)
	}
	if !reflect.DeepEqual(cfg.Guard.ForbiddenWords, []string{"casino", "loan"}) {
		t.Errorf("ForbiddenWords = %v", cfg.Guard.ForbiddenWords)
	}
	if cfg.Port != 8080 || !cfg.Debug {
		t.Errorf("Port = %d, Debug = %v", cfg.Port, cfg.Debug)
	}
}

func TestLoadFromEnvBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	if cfg := LoadFromEnv(); cfg.Port != 3000 {
		t.Errorf("Port = %d, want fallback 3000", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Feishu: FeishuConfig{AppID: "cli_app", AppSecret: "secret"},
		Guard:  GuardConfig{GroupID: "oc_group"},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	missing := &Config{Guard: GuardConfig{GroupID: "oc_group"}}
	if err := missing.Validate(); err == nil {
		t.Error("Validate should fail without Feishu credentials")
	}

	noGroup := &Config{Feishu: FeishuConfig{AppID: "cli_app", AppSecret: "secret"}}
	err := noGroup.Validate()
	if err == nil {
		t.Fatal("Validate should fail without GROUP_ID")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "GROUP_ID" {
		t.Errorf("err = %v", err)
	}
}

func TestToGuardConfig(t *testing.T) {
	cfg := &Config{Guard: GuardConfig{
		GroupID:       "oc_group",
		ArchiveChatID: "oc_archive",
		AdminIDs:      []string{"ou_a"},
	}}
	gc := cfg.ToGuardConfig()
	if gc.GroupID != "oc_group" || gc.ArchiveChatID != "oc_archive" {
		t.Errorf("gc = %+v", gc)
	}
	if !gc.IsAdmin("ou_a") || gc.IsAdmin("ou_b") {
		t.Error("IsAdmin mismatch")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,", []string{"a", "b"}},
		{",,", nil},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

func TestAuditRecordAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	a, err := NewAuditRepo(dbPath)
	if err != nil {
		t.Fatalf("NewAuditRepo: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	records := []repo.AuditRecord{
		{Action: "delete", TargetID: "u1", MessageID: "m1", Reason: "link", Automatic: true, CreatedAt: now},
		{Action: "mute", TargetID: "u2", Reason: "spam", Automatic: false, CreatedAt: now},
		{Action: "ban", TargetID: "u3", Automatic: false, CreatedAt: now},
	}
	for _, rec := range records {
		if err := a.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := a.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// newest first
	if got[0].Action != "ban" || got[0].TargetID != "u3" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Action != "mute" || got[1].Reason != "spam" || got[1].Automatic {
		t.Errorf("got[1] = %+v", got[1])
	}

	all, err := a.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	first := all[2]
	if !first.Automatic || first.Reason != "link" || first.MessageID != "m1" {
		t.Errorf("oldest record = %+v", first)
	}
	if !first.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", first.CreatedAt, now)
	}
}

func TestAuditReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	a, err := NewAuditRepo(dbPath)
	if err != nil {
		t.Fatalf("NewAuditRepo: %v", err)
	}
	if err := a.Record(ctx, repo.AuditRecord{Action: "warn", TargetID: "u1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// records survive a reopen
	b, err := NewAuditRepo(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	got, err := b.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Action != "warn" {
		t.Errorf("got = %+v", got)
	}
}

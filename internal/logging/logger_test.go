package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/infra/kvstore"
)

func TestLogger_BufferCap(t *testing.T) {
	log := New(nil, false)

	for i := 0; i < 150; i++ {
		log.Record(domain.LevelInfo, fmt.Sprintf("msg-%d", i), "test", nil)
	}

	records := log.Recent(0)
	if len(records) != BufferCap {
		t.Fatalf("expected %d records, got %d", BufferCap, len(records))
	}
	if records[0].Message != "msg-50" {
		t.Errorf("expected oldest record msg-50, got %s", records[0].Message)
	}
	if records[len(records)-1].Message != "msg-149" {
		t.Errorf("expected newest record msg-149, got %s", records[len(records)-1].Message)
	}
}

func TestLogger_BufferOrder(t *testing.T) {
	log := New(nil, false)

	for i := 0; i < 20; i++ {
		log.Record(domain.LevelDebug, fmt.Sprintf("msg-%d", i), "test", nil)
	}

	records := log.Recent(0)
	if len(records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(records))
	}
	for i, r := range records {
		if want := fmt.Sprintf("msg-%d", i); r.Message != want {
			t.Errorf("record %d: expected %s, got %s", i, want, r.Message)
		}
	}
}

func TestLogger_Sanitize(t *testing.T) {
	log := New(nil, false)

	data := map[string]any{
		"password": "hunter2",
		"nested": map[string]any{
			"token":  "abc123",
			"secret": "xyz",
			"safe":   "visible",
		},
		"user": "alex",
	}
	record := log.Record(domain.LevelInfo, "login", "auth", data)

	if record.Data["password"] != redacted {
		t.Errorf("expected password redacted, got %v", record.Data["password"])
	}
	nested := record.Data["nested"].(map[string]any)
	if nested["token"] != redacted {
		t.Errorf("expected nested token redacted, got %v", nested["token"])
	}
	if nested["secret"] != redacted {
		t.Errorf("expected nested secret redacted, got %v", nested["secret"])
	}
	if nested["safe"] != "visible" {
		t.Errorf("expected safe field preserved, got %v", nested["safe"])
	}
	if record.Data["user"] != "alex" {
		t.Errorf("expected user preserved, got %v", record.Data["user"])
	}

	// Input must not be mutated
	if data["password"] != "hunter2" {
		t.Errorf("input map was mutated: %v", data["password"])
	}
}

func TestLogger_DeviceIdentity(t *testing.T) {
	store := kvstore.NewMemory()

	first := New(store, false)
	second := New(store, false)

	if first.UserID() == "" {
		t.Fatal("expected a device identity")
	}
	if first.UserID() != second.UserID() {
		t.Errorf("expected stable device identity, got %s vs %s", first.UserID(), second.UserID())
	}
	if first.SessionID() == second.SessionID() {
		t.Error("expected distinct session ids per logger lifetime")
	}
}

func TestLogger_PersistDebugLog(t *testing.T) {
	store := kvstore.NewMemory()
	log := New(store, true)

	log.Record(domain.LevelWarn, "something odd", "test", map[string]any{"password": "x"})

	raw, ok, err := store.Get(context.Background(), debugLogKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted debug log, ok=%v err=%v", ok, err)
	}

	var persisted []domain.LogRecord
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("failed to decode persisted log: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(persisted))
	}
	if persisted[0].Message != "something odd" {
		t.Errorf("unexpected persisted message: %s", persisted[0].Message)
	}
	if persisted[0].Data["password"] != redacted {
		t.Errorf("persisted record leaked password: %v", persisted[0].Data["password"])
	}
}

func TestLogger_NoPersistWhenDisabled(t *testing.T) {
	store := kvstore.NewMemory()
	log := New(store, false)

	log.Record(domain.LevelInfo, "quiet", "test", nil)

	if _, ok, _ := store.Get(context.Background(), debugLogKey); ok {
		t.Error("expected no persisted debug log when disabled")
	}
}

func TestScoped_FixedContext(t *testing.T) {
	log := New(nil, false)

	log.Auth().Info("signed in", nil)
	log.API().Warn("slow call", nil)
	log.UI().Debug("render", nil)

	records := log.Recent(0)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	contexts := []string{"auth", "api", "ui"}
	for i, want := range contexts {
		if records[i].Context != want {
			t.Errorf("record %d: expected context %s, got %s", i, want, records[i].Context)
		}
	}
}

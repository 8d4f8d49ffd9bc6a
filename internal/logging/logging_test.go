package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/testutil"
)

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := testutil.DB(t)
	pg := NewPGHandler(db, time.Hour)
	t.Cleanup(pg.Stop)

	var out bytes.Buffer
	logger := setup(&out, "production", pg)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))) })

	logger.Info("ignored by pg")
	logger.With("request_id", "req-1").Error("payment gateway failed",
		"payment_id", "p-1",
		"user_id", "u-1",
		"action", "create_payment",
		"error", "boom",
		"step", "price",
	)
	pg.Flush()

	var logs []models.SystemLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("query logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 persisted log, got %d", len(logs))
	}
	l := logs[0]
	if l.RequestID != "req-1" || l.Action != "create_payment" || l.Error != "boom" {
		t.Fatalf("unexpected log row %+v", l)
	}
	if l.PaymentID == nil || *l.PaymentID != "p-1" {
		t.Fatalf("payment id not captured: %+v", l.PaymentID)
	}

	var extra map[string]any
	if err := json.Unmarshal(l.Extra, &extra); err != nil || extra["step"] != "price" {
		t.Fatalf("unexpected extra %s", l.Extra)
	}

	if lines := strings.Count(strings.TrimSpace(out.String()), "\n") + 1; lines != 2 {
		t.Fatalf("expected 2 stdout lines, got %d: %s", lines, out.String())
	}
}

func TestSetupLevelByEnv(t *testing.T) {
	var out bytes.Buffer
	logger := setup(&out, "production")
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))) })

	logger.Debug("hidden")
	if out.Len() != 0 {
		t.Fatalf("debug should be filtered in production: %s", out.String())
	}

	logger = setup(&out, "development")
	logger.Debug("shown")
	if !strings.Contains(out.String(), "shown") {
		t.Fatal("debug should be enabled in development")
	}
}

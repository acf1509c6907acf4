package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// recordingProvider counts deliveries and optionally fails them all.
type recordingProvider struct {
	mu        sync.Mutex
	delivered []string
	fail      bool
}

func (p *recordingProvider) Deliver(_ context.Context, n *domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("channel down")
	}
	p.delivered = append(p.delivered, n.Kind)
	return nil
}

func (p *recordingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.delivered)
}

func waitForStatus(t *testing.T, db *gorm.DB, status string, want int64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var n int64
		db.Model(&domain.Notification{}).Where("status = ?", status).Count(&n)
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d rows with status %q", want, status)
}

func TestDispatcher_DeliversAndMarksSent(t *testing.T) {
	db := testDB(t)
	p := &recordingProvider{}
	d := NewDispatcher(db, p, zerolog.Nop(), 16)
	d.Start(1)

	d.Notify("u1", "CHECK_IN_COMPLETED", "Check-in complete", "Thanks!", map[string]any{"coins": 75})
	waitForStatus(t, db, domain.NotificationSent, 1)
	d.Stop()

	if p.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", p.count())
	}
	var row domain.Notification
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.Status != domain.NotificationSent || row.Attempts != 1 {
		t.Fatalf("row not marked sent: %+v", row)
	}
}

func TestDispatcher_DeadLettersAfterRetries(t *testing.T) {
	db := testDB(t)
	p := &recordingProvider{fail: true}
	d := NewDispatcher(db, p, zerolog.Nop(), 16)
	d.retryDelay = time.Millisecond
	d.Start(1)

	d.Notify("u1", "STREAK_MILESTONE", "Milestone", "7 days", nil)
	waitForStatus(t, db, domain.NotificationDead, 1)
	d.Stop()

	var row domain.Notification
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.Status != domain.NotificationDead || row.Attempts != 3 {
		t.Fatalf("expected dead after 3 attempts: %+v", row)
	}
}

func TestDispatcher_FullQueueDropsButPersists(t *testing.T) {
	db := testDB(t)
	p := &recordingProvider{}
	// Depth 1, no workers started: the second enqueue must fail fast.
	d := NewDispatcher(db, p, zerolog.Nop(), 1)

	done := make(chan struct{})
	go func() {
		d.Notify("u1", "A", "t", "b", nil)
		d.Notify("u1", "B", "t", "b", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Notify blocked on a full queue")
	}

	// Both rows exist; both still pending since no worker ran.
	var n int64
	db.Model(&domain.Notification{}).Where("status = ?", domain.NotificationPending).Count(&n)
	if n != 2 {
		t.Fatalf("expected 2 pending rows, got %d", n)
	}

	// Draining delivers only the enqueued one.
	d.Start(1)
	waitForStatus(t, db, domain.NotificationSent, 1)
	d.Stop()
	if p.count() != 1 {
		t.Fatalf("dropped message must not be delivered, got %d deliveries", p.count())
	}
}

func TestDispatcher_NotifyAfterStopIsSafe(t *testing.T) {
	db := testDB(t)
	d := NewDispatcher(db, &recordingProvider{}, zerolog.Nop(), 4)
	d.Start(1)
	d.Stop()

	// Must not panic on the closed queue; the row still lands as pending.
	d.Notify("u1", "A", "t", "b", nil)
	var n int64
	db.Model(&domain.Notification{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected persisted row after stop, got %d", n)
	}
}

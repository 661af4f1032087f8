package rule

import (
	"errors"
	"testing"
	"time"

	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/scheduler"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.RecurringRule{},
		&models.Task{},
		&models.SchedulerRun{},
		&models.Client{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(v int) *int { return &v }

func TestCreate_MaterializesFirstTask(t *testing.T) {
	db := testDB(t)
	today := date(2025, time.March, 1)

	r, err := Create(db, CreateOpts{
		Name:         "Sales tax filing",
		ScheduleType: "monthly",
		DayOfMonth:   intp(20),
	}, today)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var task models.Task
	if err := db.Where("recurring_rule_id = ?", r.ID).First(&task).Error; err != nil {
		t.Fatalf("load first task: %v", err)
	}
	if task.DueDate == nil || !task.DueDate.Equal(date(2025, time.March, 20)) {
		t.Errorf("first due = %v, want 2025-03-20", task.DueDate)
	}
	if task.TaskType != models.TypeRecurring {
		t.Errorf("task type = %q, want recurring", task.TaskType)
	}
	if r.NextRun == nil || !r.NextRun.Equal(date(2025, time.April, 20)) {
		t.Errorf("cursor = %v, want 2025-04-20", r.NextRun)
	}
}

// A rule created on its anchor day is due today, not next month.
func TestCreate_FirstDueOnCreationDay(t *testing.T) {
	db := testDB(t)
	today := date(2025, time.March, 20)

	r, err := Create(db, CreateOpts{Name: "Payroll run", ScheduleType: "monthly", DayOfMonth: intp(20)}, today)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var task models.Task
	if err := db.Where("recurring_rule_id = ?", r.ID).First(&task).Error; err != nil {
		t.Fatalf("load first task: %v", err)
	}
	if task.DueDate == nil || !task.DueDate.Equal(today) {
		t.Errorf("first due = %v, want creation day", task.DueDate)
	}
}

func TestCreate_ExplicitNextRun(t *testing.T) {
	db := testDB(t)

	r, err := Create(db, CreateOpts{
		Name:         "Annual 1099 prep",
		ScheduleType: "annual",
		DayOfMonth:   intp(15),
		NextRun:      func() *time.Time { d := date(2026, time.January, 15); return &d }(),
	}, date(2025, time.June, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var task models.Task
	if err := db.Where("recurring_rule_id = ?", r.ID).First(&task).Error; err != nil {
		t.Fatalf("load first task: %v", err)
	}
	if task.DueDate == nil || !task.DueDate.Equal(date(2026, time.January, 15)) {
		t.Errorf("first due = %v, want 2026-01-15", task.DueDate)
	}
	if r.NextRun == nil || !r.NextRun.Equal(date(2027, time.January, 15)) {
		t.Errorf("cursor = %v, want 2027-01-15", r.NextRun)
	}
}

func TestCreate_ClientFrequency(t *testing.T) {
	db := testDB(t)
	client := models.Client{LegalName: "Acme LLC", BookkeepingFrequency: "quarterly", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}

	r, err := Create(db, CreateOpts{
		Name:         "Quarterly close",
		ScheduleType: "client_frequency",
		ClientID:     &client.ID,
		DayOfMonth:   intp(10),
	}, date(2025, time.January, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ScheduleType != "quarterly" {
		t.Errorf("schedule type = %q, want quarterly resolved from client", r.ScheduleType)
	}
}

func TestCreate_ClientFrequencyWithoutClient(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, CreateOpts{Name: "Orphan", ScheduleType: "client_frequency"}, date(2025, time.January, 2))
	if !errors.Is(err, ErrNoClientFrequency) {
		t.Errorf("err = %v, want ErrNoClientFrequency", err)
	}
}

func TestCreate_ClientFrequencyBlankFrequency(t *testing.T) {
	db := testDB(t)
	client := models.Client{LegalName: "Beta Inc", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	_, err := Create(db, CreateOpts{Name: "Close", ScheduleType: "client_frequency", ClientID: &client.ID}, date(2025, time.January, 2))
	if !errors.Is(err, ErrNoClientFrequency) {
		t.Errorf("err = %v, want ErrNoClientFrequency", err)
	}
}

// The scheduler must not re-create the first task the creation flow
// already materialized.
func TestCreate_ThenRunOnceNoDuplicate(t *testing.T) {
	db := testDB(t)
	today := date(2025, time.March, 20)

	r, err := Create(db, CreateOpts{Name: "Monthly close", ScheduleType: "monthly", DayOfMonth: intp(20)}, today)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := scheduler.RunOnce(db, today)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if res.Created != 0 {
		t.Errorf("run created %d tasks, want 0", res.Created)
	}

	var n int64
	db.Model(&models.Task{}).Where("recurring_rule_id = ?", r.ID).Count(&n)
	if n != 1 {
		t.Errorf("task count = %d, want 1", n)
	}
}

func TestDeactivate(t *testing.T) {
	db := testDB(t)
	r, err := Create(db, CreateOpts{Name: "Monthly close", ScheduleType: "monthly", DayOfMonth: intp(1)}, date(2025, time.March, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := Deactivate(db, r.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	rules, err := List(db, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("active rules = %d, want 0 after deactivate", len(rules))
	}

	if err := Deactivate(db, 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("deactivate missing rule err = %v, want record not found", err)
	}
}

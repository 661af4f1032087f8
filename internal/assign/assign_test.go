package assign

import (
	"fmt"
	"testing"

	"github.com/calloway/ledgerdesk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Client{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func uintp(v uint) *uint { return &v }

func addUser(t *testing.T, db *gorm.DB, id uint, role string, active bool) {
	t.Helper()
	// Email carries a unique index, so each user needs a distinct one.
	// IsActive carries `default:true`, so a plain Create would drop a zero
	// value; select the fields explicitly to persist false.
	u := models.User{ID: id, Name: "u", Email: fmt.Sprintf("u%d@example.com", id), Role: role, IsActive: active}
	if err := db.Select("ID", "Name", "Email", "Role", "IsActive").Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"bookkeeper", RoleBookkeeper},
		{"Manager", RoleManager},
		{" ADMIN ", RoleAdmin},
		{"", RoleNone},
		{"intern", RoleNone},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	p := DefaultPhaseSets()
	tests := []struct {
		phase string
		want  PhaseClass
	}{
		{"Admin Setup", PhaseAdmin},
		{"billing", PhaseAdmin},
		{"Bank Feeds", PhaseBookkeeper},
		{"reconcile", PhaseBookkeeper},
		{"Quarterly Review", PhaseOther},
		{"", PhaseOther},
	}
	for _, tt := range tests {
		if got := p.Classify(tt.phase); got != tt.want {
			t.Errorf("Classify(%q) = %d, want %d", tt.phase, got, tt.want)
		}
	}
}

func TestResolve_BookkeeperLadder(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})

	client := &models.Client{BookkeeperID: uintp(7), ManagerID: uintp(3)}
	got, err := r.Resolve(RoleBookkeeper, "", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 7 {
		t.Errorf("got %v, want 7", got)
	}

	// No bookkeeper: falls to the manager, not the creator.
	client = &models.Client{ManagerID: uintp(3)}
	got, err = r.Resolve(RoleBookkeeper, "", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 3 {
		t.Errorf("got %v, want manager 3", got)
	}

	// Nobody staffed: creator is the last resort.
	client = &models.Client{}
	got, err = r.Resolve(RoleBookkeeper, "", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 1 {
		t.Errorf("got %v, want creator 1", got)
	}
}

func TestResolve_ManagerLadder(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})

	client := &models.Client{BookkeeperID: uintp(7)}
	got, err := r.Resolve(RoleManager, "", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 7 {
		t.Errorf("got %v, want bookkeeper 7", got)
	}
}

func TestResolve_AdminRole(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})
	client := &models.Client{}

	// Creator is an active admin: keep the creator.
	addUser(t, db, 1, "admin", true)
	got, err := r.Resolve(RoleAdmin, "", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 1 {
		t.Errorf("got %v, want creator 1", got)
	}

	// Creator is not admin: first active admin-equivalent by id wins.
	addUser(t, db, 2, "bookkeeper", true)
	addUser(t, db, 5, "owner", true)
	addUser(t, db, 9, "admin", true)
	got, err = r.Resolve(RoleAdmin, "", client, uintp(2))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 1 {
		t.Errorf("got %v, want first admin 1", got)
	}
}

func TestResolve_AdminRole_InactiveCreatorSkipped(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})
	client := &models.Client{}

	addUser(t, db, 1, "admin", false)
	addUser(t, db, 4, "admin", true)
	got, err := r.Resolve(RoleAdmin, "", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 4 {
		t.Errorf("got %v, want active admin 4", got)
	}
}

func TestResolve_AdminRole_NoAdminsFallsBackToCreator(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})
	client := &models.Client{}

	addUser(t, db, 2, "bookkeeper", true)
	got, err := r.Resolve(RoleAdmin, "", client, uintp(2))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 2 {
		t.Errorf("got %v, want creator 2", got)
	}
}

func TestResolve_AdminPhase(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})
	addUser(t, db, 3, "admin", true)

	got, err := r.Resolve(RoleNone, "Contracts", &models.Client{}, uintp(8))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 3 {
		t.Errorf("got %v, want admin 3", got)
	}
}

func TestResolve_BookkeeperPhase_NoCreatorFallback(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})

	// Client staffing resolves normally.
	client := &models.Client{BookkeeperID: uintp(6)}
	got, err := r.Resolve(RoleNone, "Bank Feeds", client, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || *got != 6 {
		t.Errorf("got %v, want bookkeeper 6", got)
	}

	// Unstaffed client leaves the task unassigned; the creator does not
	// pick up bookkeeping work.
	got, err = r.Resolve(RoleNone, "Bank Feeds", &models.Client{}, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want unassigned", *got)
	}
}

func TestResolve_UnknownPhaseUnassigned(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, PhaseSets{})

	got, err := r.Resolve(RoleNone, "Misc", &models.Client{BookkeeperID: uintp(6)}, uintp(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want unassigned", *got)
	}
}

// Package assign resolves who a generated task belongs to from role and
// phase metadata plus the client's staffing.
package assign

import (
	"errors"
	"strings"

	"github.com/calloway/ledgerdesk/internal/models"
	"gorm.io/gorm"
)

// Role is the closed set of assignment roles a template or rule may declare.
type Role string

const (
	RoleNone       Role = ""
	RoleBookkeeper Role = "bookkeeper"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// ParseRole normalizes a free-text role label into a Role. Unknown labels
// parse as RoleNone, which falls through to phase-based resolution.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bookkeeper":
		return RoleBookkeeper
	case "manager":
		return RoleManager
	case "admin":
		return RoleAdmin
	default:
		return RoleNone
	}
}

// PhaseClass is the classification of a template's phase label.
type PhaseClass int

const (
	PhaseOther PhaseClass = iota
	PhaseAdmin
	PhaseBookkeeper
)

// PhaseSets holds the phase labels (lowercase) that classify as admin or
// bookkeeper work. Zero-value sets classify everything as PhaseOther.
type PhaseSets struct {
	Admin      map[string]bool
	Bookkeeper map[string]bool
}

// DefaultPhaseSets returns the firm's standard phase classification.
func DefaultPhaseSets() PhaseSets {
	return PhaseSets{
		Admin: map[string]bool{
			"admin setup":      true,
			"contracts":        true,
			"billing":          true,
			"engagement":       true,
			"payroll provider": true,
		},
		Bookkeeper: map[string]bool{
			"qbo setup":         true,
			"bank feeds":        true,
			"reconcile":         true,
			"chart of accounts": true,
			"reporting":         true,
			"cleanup":           true,
		},
	}
}

// Classify maps a free-text phase label to its class. Classification happens
// once at the boundary; callers never re-parse the label.
func (p PhaseSets) Classify(phase string) PhaseClass {
	key := strings.ToLower(strings.TrimSpace(phase))
	if p.Admin[key] {
		return PhaseAdmin
	}
	if p.Bookkeeper[key] {
		return PhaseBookkeeper
	}
	return PhaseOther
}

// adminEquivalent role labels. Owners hold admin powers throughout the firm.
func adminEquivalent(role string) bool {
	switch strings.ToLower(role) {
	case "admin", "owner":
		return true
	}
	return false
}

// Resolver resolves assignees against the user table.
type Resolver struct {
	DB     *gorm.DB
	Phases PhaseSets
}

// NewResolver builds a Resolver with the given phase sets; zero sets fall
// back to the defaults.
func NewResolver(db *gorm.DB, phases PhaseSets) *Resolver {
	if phases.Admin == nil && phases.Bookkeeper == nil {
		phases = DefaultPhaseSets()
	}
	return &Resolver{DB: db, Phases: phases}
}

// Resolve picks a concrete user for a task from the declared role, the
// template phase (empty for rules), the client's staffing, and the creating
// user. First match wins; nil means unassigned, which is a valid terminal
// state rather than an error.
func (r *Resolver) Resolve(role Role, phase string, client *models.Client, creatorID *uint) (*uint, error) {
	switch role {
	case RoleBookkeeper:
		return firstSet(client.BookkeeperID, client.ManagerID, creatorID), nil
	case RoleManager:
		return firstSet(client.ManagerID, client.BookkeeperID, creatorID), nil
	case RoleAdmin:
		return r.resolveAdmin(creatorID)
	}

	switch r.Phases.Classify(phase) {
	case PhaseAdmin:
		return r.resolveAdmin(creatorID)
	case PhaseBookkeeper:
		// Bookkeeper-phase work stays unassigned when the client has no
		// staffing; the creator is not a fallback here.
		return firstSet(client.BookkeeperID, client.ManagerID), nil
	}
	return nil, nil
}

// resolveAdmin prefers the creator when they are an active admin, then the
// first active admin-equivalent user by id, then the creator.
func (r *Resolver) resolveAdmin(creatorID *uint) (*uint, error) {
	if creatorID != nil {
		var creator models.User
		err := r.DB.Where("id = ?", *creatorID).First(&creator).Error
		if err == nil && creator.IsActive && adminEquivalent(creator.Role) {
			return creatorID, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var admin models.User
	err := r.DB.
		Where("role IN ? AND is_active = ?", []string{"admin", "owner"}, true).
		Order("id asc").
		First(&admin).Error
	if err == nil {
		id := admin.ID
		return &id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return creatorID, nil
}

// firstSet returns the first non-nil id, or nil.
func firstSet(ids ...*uint) *uint {
	for _, id := range ids {
		if id != nil {
			return id
		}
	}
	return nil
}

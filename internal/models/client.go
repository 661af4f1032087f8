package models

import "time"

// Client is a firm client. The scheduling core consumes the staffing fields
// (manager/bookkeeper) and the frequency label; everything else belongs to
// the surrounding CRUD layer.
type Client struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	LegalName string `gorm:"not null"`

	ManagerID    *uint
	BookkeeperID *uint

	// monthly / quarterly / annually — resolves client_frequency rules.
	BookkeepingFrequency string `gorm:"size:16"`

	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Manager    *User `gorm:"foreignKey:ManagerID"`
	Bookkeeper *User `gorm:"foreignKey:BookkeeperID"`
}

// User is a staff member. Role is a label (bookkeeper, manager, admin,
// owner); owner counts as admin-equivalent for assignment resolution.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"size:128;uniqueIndex"`
	Role     string `gorm:"size:16;default:bookkeeper"`
	IsActive bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

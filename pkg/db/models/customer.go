package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer record keyed by phone. Address fields follow the
// Kuwaiti block/street/house convention.
type Customer struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Phone      string    `gorm:"column:phone;not null;uniqueIndex"`
	Area       string    `gorm:"column:area;not null"`
	Plot       string    `gorm:"column:plot;not null"`
	Street     string    `gorm:"column:street;not null"`
	House      string    `gorm:"column:house;not null"`
	OrderCount int       `gorm:"column:order_count;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

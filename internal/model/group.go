package model

import "time"

// Group is an access group. Videos reference a group by ID; deleting a
// group does not cascade to its videos.
type Group struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	Name      string `gorm:"not null"`
}

func (Group) TableName() string {
	return "groups"
}

package model

import "time"

// swagger:model Task
type Task struct {
	UUIDBase
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	UserUUID    string     `gorm:"index;type:varchar(36);not null" json:"userUuid"`
	ProjectUUID string     `gorm:"index;type:varchar(36);not null" json:"projectUuid"`
	StatusUUID  string     `gorm:"index;type:varchar(36)" json:"statusUuid"`
	Tags        []Tag      `gorm:"many2many:task_tags" json:"tags,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

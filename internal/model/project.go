package model

// swagger:model Project
type Project struct {
	UUIDBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"size:20" json:"color"`
	UserUUID    string `gorm:"index;type:varchar(36);not null" json:"userUuid"`
	Tasks       []Task `gorm:"foreignKey:ProjectUUID" json:"tasks,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

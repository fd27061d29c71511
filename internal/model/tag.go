package model

// swagger:model Tag
type Tag struct {
	UUIDBase
	Name     string `gorm:"size:100;not null" json:"name"`
	Color    string `gorm:"size:20" json:"color"`
	UserUUID string `gorm:"index;type:varchar(36);not null" json:"userUuid"`
}

func (Tag) TableName() string {
	return "tags"
}

package model

// Status 任务状态字典，全局共享
// swagger:model Status
type Status struct {
	UUIDBase
	Name  string `gorm:"size:100;unique;not null" json:"name"`
	Color string `gorm:"size:20" json:"color"`
	Order int    `gorm:"default:0" json:"order"`
}

func (Status) TableName() string {
	return "statuses"
}

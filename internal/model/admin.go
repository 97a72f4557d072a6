package model

// Admin 管理员表，对应 admins
type Admin struct {
	AccountBase
	Department string `gorm:"type:varchar(100);not null" json:"department"`
}

// TableName 指定表名
func (Admin) TableName() string { return "admins" }

// ProfileColumns Guard 查询的投影列
func (Admin) ProfileColumns() []string { return AccountColumns("department") }

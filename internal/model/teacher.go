package model

import (
	"time"

	"github.com/lib/pq"
)

// Teacher 教师表，对应 teachers
type Teacher struct {
	AccountBase
	Department           string         `gorm:"type:varchar(100);not null"                json:"department"`
	Address              *string        `gorm:"type:text"                                 json:"address,omitempty"`
	HighestQualification string         `gorm:"type:varchar(100);not null"                json:"highestQualification"`
	JoiningDate          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"joiningDate"`
	Subjects             pq.StringArray `gorm:"type:text[];not null;default:'{}'"         json:"subjects"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// ProfileColumns Guard 查询的投影列
func (Teacher) ProfileColumns() []string {
	return AccountColumns("department", "address", "highest_qualification", "joining_date", "subjects")
}

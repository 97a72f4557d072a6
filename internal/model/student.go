package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// 学年取值
const (
	Year1 = "1st Year"
	Year2 = "2nd Year"
	Year3 = "3rd Year"
)

// Years 按先后顺序排列的全部学年
var Years = []string{Year1, Year2, Year3}

// ValidYear 是否为合法学年
func ValidYear(y string) bool {
	for _, v := range Years {
		if v == y {
			return true
		}
	}
	return false
}

// YearIndex 学年序号，非法值返回 -1
func YearIndex(y string) int {
	for i, v := range Years {
		if v == y {
			return i
		}
	}
	return -1
}

// ProgramLength 学制年数，session 形如 "2022-2025"
const ProgramLength = 3

// SessionStarting 返回从 start 年开始的 session
func SessionStarting(start int) string {
	return fmt.Sprintf("%d-%d", start, start+ProgramLength)
}

var sessionPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// ValidSession session 形如 "2022-2025"，结束年须晚于开始年
func ValidSession(s string) bool {
	m := sessionPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end > start
}

// Address 学生住址
type Address struct {
	Street  string `gorm:"type:varchar(200);not null" json:"street"`
	City    string `gorm:"type:varchar(100);not null" json:"city"`
	State   string `gorm:"type:varchar(100);not null" json:"state"`
	ZipCode string `gorm:"type:varchar(20);not null"  json:"zipCode"`
	Country string `gorm:"type:varchar(100);not null" json:"country"`
}

// Guardian 监护人信息
type Guardian struct {
	Name         string `gorm:"type:varchar(100);not null" json:"guardianName"`
	Phone        string `gorm:"type:varchar(30);not null"  json:"guardianPhone"`
	Email        string `gorm:"type:varchar(255);not null" json:"guardianEmail"`
	Relationship string `gorm:"type:varchar(50);not null"  json:"relationship"`
}

// Student 学生表，对应 students
type Student struct {
	AccountBase
	Roll                 string    `gorm:"type:varchar(50);not null"                    json:"roll"`
	UniqueCode           string    `gorm:"type:varchar(64);not null"                    json:"uniqueCode"`
	DateOfBirth          time.Time `gorm:"type:date;not null"                           json:"dateOfBirth"`
	Address              Address   `gorm:"embedded;embeddedPrefix:address_"             json:"address"`
	Year                 string    `gorm:"type:varchar(10);not null;index:idx_students_year_session" json:"year"`
	Session              string    `gorm:"type:varchar(9);not null;index:idx_students_year_session"  json:"session"`
	Fee                  float64   `gorm:"type:numeric(12,2);not null"                  json:"fee"`
	HighestQualification string    `gorm:"type:varchar(100);not null"                   json:"highestQualification"`
	Guardian             Guardian  `gorm:"embedded;embeddedPrefix:guardian_"            json:"guardianDetails"`
	AdmissionDate        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"admissionDate"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// ProfileColumns Guard 查询的投影列
func (Student) ProfileColumns() []string {
	return AccountColumns(
		"roll", "unique_code", "date_of_birth",
		"address_street", "address_city", "address_state", "address_zip_code", "address_country",
		"year", "session", "fee", "highest_qualification",
		"guardian_name", "guardian_phone", "guardian_email", "guardian_relationship",
		"admission_date",
	)
}

package model

import "fmt"

// Role 账号角色，每张账号表固定一个角色
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Model 聊天消息中的发送者模型名（Admin / Teacher / Student）
func (r Role) Model() string {
	switch r {
	case RoleAdmin:
		return SenderAdmin
	case RoleTeacher:
		return SenderTeacher
	default:
		return SenderStudent
	}
}

// AccountBase 三种角色共享的账号字段
type AccountBase struct {
	ID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role    `gorm:"type:varchar(20);not null"                      json:"role"`
	Phone        string  `gorm:"type:varchar(30);not null"                      json:"phone"`
	Avatar       *string `gorm:"type:text"                                      json:"avatar"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"isActive"`
	RefreshToken *string `gorm:"type:text"                                      json:"-"`
	Timestamps
}

// Base 供泛型仓储 / 服务访问公共字段
func (a *AccountBase) Base() *AccountBase { return a }

// Account 所有角色账号实现的接口
type Account interface {
	Base() *AccountBase
	TableName() string
	ProfileColumns() []string
}

// AccountPtr 约束 PT 为 *T 且实现 Account
type AccountPtr[T any] interface {
	*T
	Account
}

// AccountColumns 返回 Guard 查询时使用的列（排除密码与 refresh token）
func AccountColumns(extra ...string) []string {
	cols := []string{"id", "name", "email", "role", "phone", "avatar", "is_active", "created_at", "updated_at"}
	return append(cols, extra...)
}

// RoleFor 返回泛型账号类型对应的角色
func RoleFor[T any, PT AccountPtr[T]]() Role {
	var v T
	switch any(PT(&v)).(type) {
	case *Admin:
		return RoleAdmin
	case *Teacher:
		return RoleTeacher
	case *Student:
		return RoleStudent
	}
	panic(fmt.Sprintf("unknown account type %T", v))
}

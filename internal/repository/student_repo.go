package repository

import (
	"context"

	"gorm.io/gorm"

	"academia/backend/internal/model"
)

// StudentRepository 学生数据访问接口，在通用账号操作之上增加分组与升年级
type StudentRepository interface {
	AccountRepository[model.Student]
	// ListForGrouping 按 year、session 排序返回分组所需的列
	ListForGrouping(ctx context.Context) ([]model.Student, error)
	PromoteYear(ctx context.Context, from, to, session string) (int64, error)
	DeleteByYearAndSession(ctx context.Context, year, session string) (int64, error)
}

type studentRepo struct {
	AccountRepository[model.Student]
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{
		AccountRepository: NewAccountRepo[model.Student](db),
		db:                db,
	}
}

func (r *studentRepo) ListForGrouping(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Select("id", "name", "email", "roll", "phone", "avatar", "year", "session").
		Order("year ASC, session ASC, created_at ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) PromoteYear(ctx context.Context, from, to, session string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("year = ? AND session = ?", from, session).
		Update("year", to)
	return res.RowsAffected, res.Error
}

func (r *studentRepo) DeleteByYearAndSession(ctx context.Context, year, session string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("year = ? AND session = ?", year, session).
		Delete(&model.Student{})
	return res.RowsAffected, res.Error
}

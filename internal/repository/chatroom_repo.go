package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academia/backend/internal/model"
)

// ChatroomRepository 聊天室数据访问接口
type ChatroomRepository interface {
	// GetWithMessages 加载聊天室及其按插入顺序排列的消息
	GetWithMessages(ctx context.Context, year, session string) (*model.Chatroom, error)
	// FindOrCreate 并发创建同一 (year, session) 时只会产生一行
	FindOrCreate(ctx context.Context, year, session string) (*model.Chatroom, error)
	AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	AddParticipant(ctx context.Context, p *model.ChatParticipant) error
}

type chatroomRepo struct {
	db *gorm.DB
}

// NewChatroomRepo 创建 ChatroomRepository 实例
func NewChatroomRepo(db *gorm.DB) ChatroomRepository {
	return &chatroomRepo{db: db}
}

func (r *chatroomRepo) GetWithMessages(ctx context.Context, year, session string) (*model.Chatroom, error) {
	var room model.Chatroom
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("message_id ASC")
		}).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Where("year = ? AND session = ?", year, session).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatroomRepo) FindOrCreate(ctx context.Context, year, session string) (*model.Chatroom, error) {
	room := &model.Chatroom{
		Year:             year,
		Session:          session,
		ParticipantModel: model.SenderStudent,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year"}, {Name: "session"}},
			DoNothing: true,
		}).
		Create(room).Error
	if err != nil {
		return nil, err
	}

	var existing model.Chatroom
	err = r.db.WithContext(ctx).
		Where("year = ? AND session = ?", year, session).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *chatroomRepo) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatroomRepo) AddParticipant(ctx context.Context, p *model.ChatParticipant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
}

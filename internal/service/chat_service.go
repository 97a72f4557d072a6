package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
)

// ChatService 聊天室业务接口
type ChatService interface {
	GetMessages(ctx context.Context, year, session string) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, in SendMessageInput) (*model.Chatroom, error)
}

// SendMessageInput 发送者信息来自鉴权身份
type SendMessageInput struct {
	Year     string
	Session  string
	SenderID string
	Sender   model.Role
	Content  string
	Type     string
}

type chatService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewChatService 创建 ChatService 实例
func NewChatService(repo *repository.Repository, logger *zap.Logger) ChatService {
	return &chatService{repo: repo, logger: logger, now: time.Now}
}

func (s *chatService) GetMessages(ctx context.Context, year, session string) ([]model.ChatMessage, error) {
	if err := validateRoomKey(year, session); err != nil {
		return nil, err
	}

	room, err := s.repo.Chatroom.GetWithMessages(ctx, year, session)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatroomNotFound
		}
		s.logger.Error("查询聊天室失败", zap.String("year", year), zap.String("session", session), zap.Error(err))
		return nil, apperrors.Internal("Failed to load chatroom", err)
	}
	if room.Messages == nil {
		return []model.ChatMessage{}, nil
	}
	return room.Messages, nil
}

// SendMessage 同一事务内：查找或创建聊天室 → 追加消息 → 记录参与者
func (s *chatService) SendMessage(ctx context.Context, in SendMessageInput) (*model.Chatroom, error) {
	if err := validateRoomKey(in.Year, in.Session); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	msgType := in.Type
	if msgType == "" {
		msgType = model.MessageText
	}
	if msgType != model.MessageText && msgType != model.MessageImage {
		return nil, ErrInvalidMessageType
	}

	var room *model.Chatroom
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		r, err := txRepo.Chatroom.FindOrCreate(ctx, in.Year, in.Session)
		if err != nil {
			return err
		}
		now := s.now()
		msg := &model.ChatMessage{
			ChatroomID:  r.ChatroomID,
			SenderID:    in.SenderID,
			SenderModel: in.Sender.Model(),
			Content:     content,
			Type:        msgType,
			Timestamp:   now,
		}
		if err := txRepo.Chatroom.AppendMessage(ctx, msg); err != nil {
			return err
		}
		if err := txRepo.Chatroom.AddParticipant(ctx, &model.ChatParticipant{
			ChatroomID:       r.ChatroomID,
			ParticipantID:    in.SenderID,
			ParticipantModel: in.Sender.Model(),
			JoinedAt:         now,
		}); err != nil {
			return err
		}
		room, err = txRepo.Chatroom.GetWithMessages(ctx, in.Year, in.Session)
		return err
	})
	if err != nil {
		s.logger.Error("发送消息失败", zap.String("year", in.Year), zap.String("session", in.Session), zap.Error(err))
		return nil, apperrors.Internal("Failed to send message", err)
	}
	return room, nil
}

func validateRoomKey(year, session string) error {
	if !model.ValidYear(year) {
		return ErrInvalidYear
	}
	if !model.ValidSession(session) {
		return ErrInvalidSession
	}
	return nil
}

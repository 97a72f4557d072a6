//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	"academia/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=academia password=academia_password dbname=academia_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func newStudent(year, session string) *model.Student {
	avatar := "https://cdn.example.com/a.png"
	return &model.Student{
		AccountBase: model.AccountBase{
			Name:         "测试学生",
			Email:        uniq("student") + "@example.com",
			PasswordHash: "$2a$10$placeholder",
			Role:         model.RoleStudent,
			Phone:        "123",
			Avatar:       &avatar,
			IsActive:     true,
		},
		Roll:                 uniq("R"),
		UniqueCode:           uniq("code"),
		DateOfBirth:          time.Date(2004, 1, 2, 0, 0, 0, 0, time.UTC),
		Address:              model.Address{Street: "s", City: "c", State: "st", ZipCode: "z", Country: "co"},
		Year:                 year,
		Session:              session,
		Fee:                  1000,
		HighestQualification: "HS",
		Guardian:             model.Guardian{Name: "g", Phone: "1", Email: "g@example.com", Relationship: "father"},
	}
}

func cleanupStudent(s *model.Student) {
	testDB.Where("id = ?", s.ID).Delete(&model.Student{})
}

// ═══════════════════════════════════════════════════════════
// Test: Account repository
// ═══════════════════════════════════════════════════════════

func TestAccount_RefreshTokenSlot(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newStudent(model.Year1, "2024-2027")
	if err := repo.Student.Create(ctx, s); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	defer cleanupStudent(s)

	token := "refresh-1"
	if err := repo.Student.SetRefreshToken(ctx, s.ID, &token); err != nil {
		t.Fatalf("SetRefreshToken 失败: %v", err)
	}
	got, _ := repo.Student.GetByID(ctx, s.ID)
	if got.RefreshToken == nil || *got.RefreshToken != token {
		t.Fatalf("期望 refresh token=%s，实际=%v", token, got.RefreshToken)
	}

	if err := repo.Student.SetRefreshToken(ctx, s.ID, nil); err != nil {
		t.Fatalf("清空 refresh token 失败: %v", err)
	}
	got, _ = repo.Student.GetByID(ctx, s.ID)
	if got.RefreshToken != nil {
		t.Errorf("期望 refresh token 为 NULL，实际=%v", *got.RefreshToken)
	}

	profile, err := repo.Student.GetProfile(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetProfile 失败: %v", err)
	}
	if profile.PasswordHash != "" || profile.RefreshToken != nil {
		t.Error("GetProfile 不应加载密码哈希与 refresh token")
	}
	if profile.Address.City != "c" || profile.Guardian.Relationship != "father" {
		t.Errorf("GetProfile 应加载嵌入字段，实际 %+v", profile)
	}
}

func TestAccount_EmailUniquePerTable(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newStudent(model.Year1, "2024-2027")
	if err := repo.Student.Create(ctx, s); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	defer cleanupStudent(s)

	taken, err := repo.Student.EmailTaken(ctx, s.Email, "")
	if err != nil || !taken {
		t.Fatalf("期望邮箱已占用，taken=%v err=%v", taken, err)
	}
	taken, _ = repo.Student.EmailTaken(ctx, s.Email, s.ID)
	if taken {
		t.Error("排除自身后邮箱不应视为占用")
	}
	taken, _ = repo.Teacher.EmailTaken(ctx, s.Email, "")
	if taken {
		t.Error("邮箱唯一性仅限同一角色表")
	}

	dup := newStudent(model.Year1, "2024-2027")
	dup.Email = s.Email
	if err := repo.Student.Create(ctx, dup); err == nil {
		cleanupStudent(dup)
		t.Fatal("同表重复邮箱应插入失败")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Invite consumption
// ═══════════════════════════════════════════════════════════

func TestInvite_ConsumeOnce(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	invite := &model.InviteCode{Code: uniq("inv"), Role: model.RoleStudent, ExpiresAt: now.Add(model.InviteTTL)}
	if err := repo.Invite.Create(ctx, invite); err != nil {
		t.Fatalf("创建邀请码失败: %v", err)
	}
	defer testDB.Where("code = ?", invite.Code).Delete(&model.InviteCode{})

	if ok, _ := repo.Invite.Consume(ctx, invite.Code, model.RoleTeacher, now); ok {
		t.Fatal("角色不匹配时不应消费成功")
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	hits := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Invite.Consume(ctx, invite.Code, model.RoleStudent, time.Now())
			if err == nil && ok {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if hits != 1 {
		t.Errorf("并发消费同一邀请码应只有 1 次成功，实际 %d", hits)
	}
}

func TestInvite_ExpiredIsInvisibleAndPurged(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	invite := &model.InviteCode{Code: uniq("old"), Role: model.RoleTeacher, ExpiresAt: now.Add(-time.Minute)}
	if err := repo.Invite.Create(ctx, invite); err != nil {
		t.Fatalf("创建邀请码失败: %v", err)
	}

	if _, err := repo.Invite.GetValid(ctx, invite.Code, model.RoleTeacher, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("过期邀请码应不可见，实际 err=%v", err)
	}
	n, err := repo.Invite.PurgeExpired(ctx, now)
	if err != nil || n < 1 {
		t.Errorf("期望清理至少 1 条，n=%d err=%v", n, err)
	}
}

func TestTransaction_RollbackRestoresInvite(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	existing := newStudent(model.Year1, "2024-2027")
	if err := repo.Student.Create(ctx, existing); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	defer cleanupStudent(existing)

	invite := &model.InviteCode{Code: uniq("tx"), Role: model.RoleStudent, ExpiresAt: now.Add(model.InviteTTL)}
	if err := repo.Invite.Create(ctx, invite); err != nil {
		t.Fatalf("创建邀请码失败: %v", err)
	}
	defer testDB.Where("code = ?", invite.Code).Delete(&model.InviteCode{})

	// 邮箱冲突导致插入失败，邀请码消费应一并回滚
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if ok, err := txRepo.Invite.Consume(ctx, invite.Code, model.RoleStudent, now); err != nil || !ok {
			return fmt.Errorf("consume: ok=%v err=%v", ok, err)
		}
		dup := newStudent(model.Year1, "2024-2027")
		dup.Email = existing.Email
		return txRepo.Student.Create(ctx, dup)
	})
	if err == nil {
		t.Fatal("期望事务失败")
	}

	if _, err := repo.Invite.GetValid(ctx, invite.Code, model.RoleStudent, time.Now()); err != nil {
		t.Errorf("回滚后邀请码应仍可用，实际 err=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Chatroom
// ═══════════════════════════════════════════════════════════

func TestChatroom_FindOrCreateAndOrder(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	session := model.SessionStarting(2100 + int(time.Now().UnixNano()%800))

	r1, err := repo.Chatroom.FindOrCreate(ctx, model.Year1, session)
	if err != nil {
		t.Fatalf("FindOrCreate 失败: %v", err)
	}
	defer testDB.Where("chatroom_id = ?", r1.ChatroomID).Delete(&model.Chatroom{})

	r2, err := repo.Chatroom.FindOrCreate(ctx, model.Year1, session)
	if err != nil {
		t.Fatalf("第二次 FindOrCreate 失败: %v", err)
	}
	if r1.ChatroomID != r2.ChatroomID {
		t.Fatal("同一 (year, session) 应返回同一聊天室")
	}

	sender := "00000000-0000-0000-0000-000000000001"
	for _, content := range []string{"first", "second"} {
		msg := &model.ChatMessage{ChatroomID: r1.ChatroomID, SenderID: sender, SenderModel: model.SenderStudent, Content: content, Type: model.MessageText}
		if err := repo.Chatroom.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage 失败: %v", err)
		}
	}
	p := &model.ChatParticipant{ChatroomID: r1.ChatroomID, ParticipantID: sender, ParticipantModel: model.SenderStudent}
	if err := repo.Chatroom.AddParticipant(ctx, p); err != nil {
		t.Fatalf("AddParticipant 失败: %v", err)
	}
	if err := repo.Chatroom.AddParticipant(ctx, p); err != nil {
		t.Fatalf("重复 AddParticipant 应被忽略: %v", err)
	}

	room, err := repo.Chatroom.GetWithMessages(ctx, model.Year1, session)
	if err != nil {
		t.Fatalf("GetWithMessages 失败: %v", err)
	}
	if len(room.Messages) != 2 || room.Messages[0].Content != "first" || room.Messages[1].Content != "second" {
		t.Errorf("消息顺序错误: %+v", room.Messages)
	}
	if len(room.Participants) != 1 {
		t.Errorf("期望 1 个参与者，实际 %d", len(room.Participants))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Promotion batch
// ═══════════════════════════════════════════════════════════

func TestStudent_PromoteAndDelete(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	second := newStudent(model.Year2, "1990-1993")
	third := newStudent(model.Year3, "1989-1992")
	for _, s := range []*model.Student{second, third} {
		if err := repo.Student.Create(ctx, s); err != nil {
			t.Fatalf("创建学生失败: %v", err)
		}
		defer cleanupStudent(s)
	}

	n, err := repo.Student.PromoteYear(ctx, model.Year2, model.Year3, "1990-1993")
	if err != nil || n != 1 {
		t.Fatalf("PromoteYear n=%d err=%v", n, err)
	}
	got, _ := repo.Student.GetByID(ctx, second.ID)
	if got.Year != model.Year3 {
		t.Errorf("期望升为 3rd Year，实际 %s", got.Year)
	}

	n, err = repo.Student.DeleteByYearAndSession(ctx, model.Year3, "1989-1992")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByYearAndSession n=%d err=%v", n, err)
	}
	if _, err := repo.Student.GetByID(ctx, third.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("毕业学生应被删除，实际 err=%v", err)
	}
}

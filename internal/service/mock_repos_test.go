package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"academia/backend/config"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	"academia/backend/pkg/jwt"
)

// ── Mock AccountRepository ──

type mockAccountRepo[T any, PT model.AccountPtr[T]] struct {
	mu      sync.Mutex
	items   map[string]*T
	seq     int
	prefix  string
	updates map[string]map[string]interface{}
}

func newMockAccountRepo[T any, PT model.AccountPtr[T]](prefix string) *mockAccountRepo[T, PT] {
	return &mockAccountRepo[T, PT]{
		items:   make(map[string]*T),
		prefix:  prefix,
		updates: make(map[string]map[string]interface{}),
	}
}

func (m *mockAccountRepo[T, PT]) Create(_ context.Context, account *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := PT(account).Base()
	for _, it := range m.items {
		if PT(it).Base().Email == base.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if base.ID == "" {
		m.seq++
		base.ID = fmt.Sprintf("%s-%d", m.prefix, m.seq)
	}
	cp := *account
	m.items[base.ID] = &cp
	return nil
}

func (m *mockAccountRepo[T, PT]) GetByID(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo[T, PT]) GetProfile(ctx context.Context, id string) (*T, error) {
	account, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	base := PT(account).Base()
	base.PasswordHash = ""
	base.RefreshToken = nil
	return account, nil
}

func (m *mockAccountRepo[T, PT]) GetByEmail(_ context.Context, email string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if PT(it).Base().Email == email {
			cp := *it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo[T, PT]) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.items {
		if id != excludeID && PT(it).Base().Email == email {
			return true, nil
		}
	}
	return false, nil
}

// UpdateFields 只应用公共列，其余列记录在 updates 中供断言
func (m *mockAccountRepo[T, PT]) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	base := PT(it).Base()
	if m.updates[id] == nil {
		m.updates[id] = map[string]interface{}{}
	}
	for k, v := range fields {
		m.updates[id][k] = v
		switch k {
		case "name":
			base.Name = v.(string)
		case "email":
			base.Email = v.(string)
		case "phone":
			base.Phone = v.(string)
		case "avatar":
			s := v.(string)
			base.Avatar = &s
		case "password_hash":
			base.PasswordHash = v.(string)
		}
	}
	return nil
}

func (m *mockAccountRepo[T, PT]) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.UpdateFields(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (m *mockAccountRepo[T, PT]) SetRefreshToken(_ context.Context, id string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if token == nil {
		PT(it).Base().RefreshToken = nil
		return nil
	}
	t := *token
	PT(it).Base().RefreshToken = &t
	return nil
}

func (m *mockAccountRepo[T, PT]) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}

// stored 返回内部记录（不复制），用于断言
func (m *mockAccountRepo[T, PT]) stored(id string) *T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	*mockAccountRepo[model.Student, *model.Student]
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{newMockAccountRepo[model.Student, *model.Student]("student")}
}

func (m *mockStudentRepo) ListForGrouping(_ context.Context) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Student, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Session != out[j].Session {
			return out[i].Session < out[j].Session
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockStudentRepo) PromoteYear(_ context.Context, from, to, session string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.items {
		if s.Year == from && s.Session == session {
			s.Year = to
			n++
		}
	}
	return n, nil
}

func (m *mockStudentRepo) DeleteByYearAndSession(_ context.Context, year, session string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.items {
		if s.Year == year && s.Session == session {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

// ── Mock InviteCodeRepository ──

type mockInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*model.InviteCode
	// lostRace 为 true 时 Consume 模拟并发下被他人抢先使用
	lostRace bool
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{invites: make(map[string]*model.InviteCode)}
}

func (m *mockInviteRepo) Create(_ context.Context, code *model.InviteCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.invites[code.Code] = &cp
	return nil
}

func (m *mockInviteRepo) valid(code string, role model.Role, now time.Time) *model.InviteCode {
	inv, ok := m.invites[code]
	if !ok || inv.Used || inv.Role != role || !inv.ExpiresAt.After(now) {
		return nil
	}
	return inv
}

func (m *mockInviteRepo) GetValid(_ context.Context, code string, role model.Role, now time.Time) (*model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv := m.valid(code, role, now); inv != nil {
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) Consume(_ context.Context, code string, role model.Role, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lostRace {
		return false, nil
	}
	if inv := m.valid(code, role, now); inv != nil {
		inv.Used = true
		return true, nil
	}
	return false, nil
}

func (m *mockInviteRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for code, inv := range m.invites {
		if !inv.ExpiresAt.After(now) {
			delete(m.invites, code)
			n++
		}
	}
	return n, nil
}

func (m *mockInviteRepo) get(code string) *model.InviteCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invites[code]
}

// ── Mock ChatroomRepository ──

type mockChatroomRepo struct {
	mu       sync.Mutex
	rooms    map[string]*model.Chatroom
	msgSeq   int64
	roomSeq  int
	failSend error
}

func newMockChatroomRepo() *mockChatroomRepo {
	return &mockChatroomRepo{rooms: make(map[string]*model.Chatroom)}
}

func roomKey(year, session string) string { return year + "|" + session }

func (m *mockChatroomRepo) findByID(id string) *model.Chatroom {
	for _, r := range m.rooms {
		if r.ChatroomID == id {
			return r
		}
	}
	return nil
}

func (m *mockChatroomRepo) GetWithMessages(_ context.Context, year, session string) (*model.Chatroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomKey(year, session)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	cp.Messages = append([]model.ChatMessage(nil), r.Messages...)
	cp.Participants = append([]model.ChatParticipant(nil), r.Participants...)
	return &cp, nil
}

func (m *mockChatroomRepo) FindOrCreate(_ context.Context, year, session string) (*model.Chatroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := roomKey(year, session)
	if r, ok := m.rooms[key]; ok {
		cp := *r
		return &cp, nil
	}
	m.roomSeq++
	r := &model.Chatroom{
		ChatroomID:       fmt.Sprintf("room-%d", m.roomSeq),
		Year:             year,
		Session:          session,
		ParticipantModel: model.SenderStudent,
	}
	m.rooms[key] = r
	cp := *r
	return &cp, nil
}

func (m *mockChatroomRepo) AppendMessage(_ context.Context, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend != nil {
		return m.failSend
	}
	r := m.findByID(msg.ChatroomID)
	if r == nil {
		return gorm.ErrRecordNotFound
	}
	m.msgSeq++
	msg.MessageID = m.msgSeq
	r.Messages = append(r.Messages, *msg)
	return nil
}

func (m *mockChatroomRepo) AddParticipant(_ context.Context, p *model.ChatParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findByID(p.ChatroomID)
	if r == nil {
		return gorm.ErrRecordNotFound
	}
	for _, existing := range r.Participants {
		if existing.ParticipantID == p.ParticipantID {
			return nil
		}
	}
	r.Participants = append(r.Participants, *p)
	return nil
}

// ── 外部依赖 fake ──

type fakeUploader struct {
	mu      sync.Mutex
	err     error
	calls   []string
	deleted []string
}

func (f *fakeUploader) UploadFile(_ context.Context, localPath, prefix string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, localPath)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/" + prefix + "/" + filepath.Base(localPath), nil
}

func (f *fakeUploader) DeleteFile(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeRevoker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[jti]
	return ok, nil
}

type publishedEvent struct {
	Type    string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

// ── 测试环境 ──

type testEnv struct {
	repo      *repository.Repository
	admins    *mockAccountRepo[model.Admin, *model.Admin]
	teachers  *mockAccountRepo[model.Teacher, *model.Teacher]
	students  *mockStudentRepo
	invites   *mockInviteRepo
	chats     *mockChatroomRepo
	jwtMgr    *jwt.Manager
	uploader  *fakeUploader
	revoker   *fakeRevoker
	publisher *fakePublisher
	svc       *Service
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		AccessTokenSecret:  "test-access-secret-for-unit-testing",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret-for-unit-testing",
		RefreshTokenTTL:    10 * 24 * time.Hour,
		BcryptCost:         4,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		admins:    newMockAccountRepo[model.Admin, *model.Admin]("admin"),
		teachers:  newMockAccountRepo[model.Teacher, *model.Teacher]("teacher"),
		students:  newMockStudentRepo(),
		invites:   newMockInviteRepo(),
		chats:     newMockChatroomRepo(),
		uploader:  &fakeUploader{},
		revoker:   newFakeRevoker(),
		publisher: &fakePublisher{},
	}
	env.repo = &repository.Repository{
		Admin:    env.admins,
		Teacher:  env.teachers,
		Student:  env.students,
		Invite:   env.invites,
		Chatroom: env.chats,
	}

	cfg := &config.Config{
		Auth: *testAuthConfig(),
		Scheduler: config.SchedulerConfig{
			PromotionSpec: "0 0 1 6 *",
			Timezone:      "UTC",
		},
	}
	env.jwtMgr = jwt.NewManager(&cfg.Auth)

	svc, err := NewService(cfg, env.repo, env.jwtMgr, Deps{
		Uploader:  env.uploader,
		Revoker:   env.revoker,
		Publisher: env.publisher,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService 失败: %v", err)
	}
	env.svc = svc
	return env
}

// seedInvite 直接写入一个有效邀请码
func (e *testEnv) seedInvite(t *testing.T, code string, role model.Role) {
	t.Helper()
	err := e.invites.Create(context.Background(), &model.InviteCode{
		Code:      code,
		Role:      role,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(model.InviteTTL),
	})
	if err != nil {
		t.Fatalf("写入邀请码失败: %v", err)
	}
}

package service

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	"academia/backend/pkg/jwt"
)

// TeacherService 教师业务接口
type TeacherService interface {
	AccountService[model.Teacher]
	Register(ctx context.Context, req *dto.RegisterTeacherRequest, avatarPath string) (*model.Teacher, error)
	UpdateDetails(ctx context.Context, accountID string, req *dto.UpdateTeacherRequest) (*model.Teacher, error)
}

type teacherService struct {
	*accountCore[model.Teacher, *model.Teacher]
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	invites InviteService,
	deps AccountDeps,
	logger *zap.Logger,
) TeacherService {
	pick := func(r *repository.Repository) repository.AccountRepository[model.Teacher] { return r.Teacher }
	sessions := NewSessionIssuer[model.Teacher, *model.Teacher](repo.Teacher, jwtMgr, logger)
	return &teacherService{
		accountCore: newAccountCore(repo, pick, sessions, invites, deps, logger),
	}
}

// Register 教师注册需要 teacher 邀请码，头像可选
func (s *teacherService) Register(ctx context.Context, req *dto.RegisterTeacherRequest, avatarPath string) (*model.Teacher, error) {
	return s.register(ctx, registration[model.Teacher]{
		missing:    req.MissingFields(),
		email:      req.Email,
		password:   req.Password,
		inviteCode: strings.TrimSpace(req.UniqueCode),
		avatarPath: avatarPath,
		build: func() (*model.Teacher, error) {
			t := &model.Teacher{
				AccountBase: model.AccountBase{
					Name:  strings.TrimSpace(req.Name),
					Phone: strings.TrimSpace(req.Phone),
				},
				Department:           strings.TrimSpace(req.Department),
				HighestQualification: strings.TrimSpace(req.HighestQualification),
				Subjects:             pq.StringArray(dto.Compact(req.Subjects)),
			}
			if addr := strings.TrimSpace(req.Address); addr != "" {
				t.Address = &addr
			}
			return t, nil
		},
	})
}

func (s *teacherService) UpdateDetails(ctx context.Context, accountID string, req *dto.UpdateTeacherRequest) (*model.Teacher, error) {
	if req.IsEmpty() {
		return nil, ErrNoDetails
	}

	u := newProfileUpdate()
	u.setString("name", "name", req.Name)
	u.setString("email", "email", req.Email)
	u.setString("phone", "phone", req.Phone)
	u.setString("department", "department", req.Department)
	u.setString("highest_qualification", "highestQualification", req.HighestQualification)
	if err := u.err(); err != nil {
		return nil, err
	}
	// address 可选，空值清除
	if req.Address != nil {
		if addr := strings.TrimSpace(*req.Address); addr != "" {
			u.fields["address"] = addr
		} else {
			u.fields["address"] = nil
		}
	}
	if req.Subjects != nil {
		subjects := dto.Compact(*req.Subjects)
		if len(subjects) == 0 {
			return nil, ErrNoDetails
		}
		u.fields["subjects"] = pq.StringArray(subjects)
	}

	return s.applyUpdates(ctx, accountID, u.fields)
}

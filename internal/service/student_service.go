package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
	"academia/backend/pkg/jwt"
)

// StudentService 学生业务接口
type StudentService interface {
	AccountService[model.Student]
	Register(ctx context.Context, req *dto.RegisterStudentRequest, avatarPath string) (*model.Student, error)
	UpdateDetails(ctx context.Context, accountID string, req *dto.UpdateStudentRequest) (*model.Student, error)
	GroupByYearAndSession(ctx context.Context) ([]dto.StudentGroup, error)
	ExportGrouped(ctx context.Context) ([]byte, error)
}

type studentService struct {
	*accountCore[model.Student, *model.Student]
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	invites InviteService,
	deps AccountDeps,
	logger *zap.Logger,
) StudentService {
	pick := func(r *repository.Repository) repository.AccountRepository[model.Student] { return r.Student }
	sessions := NewSessionIssuer[model.Student, *model.Student](repo.Student, jwtMgr, logger)
	return &studentService{
		accountCore: newAccountCore(repo, pick, sessions, invites, deps, logger),
	}
}

// Register 学生注册需要 student 邀请码，头像必填；邀请码同时记录在 unique_code 上
func (s *studentService) Register(ctx context.Context, req *dto.RegisterStudentRequest, avatarPath string) (*model.Student, error) {
	code := strings.TrimSpace(req.UniqueCode)
	return s.register(ctx, registration[model.Student]{
		missing:        req.MissingFields(),
		email:          req.Email,
		password:       req.Password,
		inviteCode:     code,
		avatarPath:     avatarPath,
		avatarRequired: true,
		build: func() (*model.Student, error) {
			dob, err := parseDate(req.DateOfBirth)
			if err != nil {
				return nil, err
			}
			return &model.Student{
				AccountBase: model.AccountBase{
					Name:  strings.TrimSpace(req.Name),
					Phone: strings.TrimSpace(req.Phone),
				},
				Roll:        strings.TrimSpace(req.Roll),
				UniqueCode:  code,
				DateOfBirth: dob,
				Address: model.Address{
					Street:  strings.TrimSpace(req.AddressStreet),
					City:    strings.TrimSpace(req.AddressCity),
					State:   strings.TrimSpace(req.AddressState),
					ZipCode: strings.TrimSpace(req.AddressZipCode),
					Country: strings.TrimSpace(req.AddressCountry),
				},
				Year:                 req.Year,
				Session:              req.Session,
				Fee:                  req.Fee,
				HighestQualification: strings.TrimSpace(req.HighestQualification),
				Guardian: model.Guardian{
					Name:         strings.TrimSpace(req.GuardianName),
					Phone:        strings.TrimSpace(req.GuardianPhone),
					Email:        strings.TrimSpace(req.GuardianEmail),
					Relationship: strings.TrimSpace(req.GuardianRelationship),
				},
			}, nil
		},
	})
}

func (s *studentService) UpdateDetails(ctx context.Context, accountID string, req *dto.UpdateStudentRequest) (*model.Student, error) {
	if req.IsEmpty() {
		return nil, ErrNoDetails
	}

	u := newProfileUpdate()
	u.setString("name", "name", req.Name)
	u.setString("email", "email", req.Email)
	u.setString("phone", "phone", req.Phone)
	u.setString("highest_qualification", "highestQualification", req.HighestQualification)
	if a := req.Address; a != nil {
		u.setTrimmed("address_street", "address.street", a.Street)
		u.setTrimmed("address_city", "address.city", a.City)
		u.setTrimmed("address_state", "address.state", a.State)
		u.setTrimmed("address_zip_code", "address.zipCode", a.ZipCode)
		u.setTrimmed("address_country", "address.country", a.Country)
	}
	if g := req.GuardianDetails; g != nil {
		u.setTrimmed("guardian_name", "guardianDetails.guardianName", g.GuardianName)
		u.setTrimmed("guardian_phone", "guardianDetails.guardianPhone", g.GuardianPhone)
		u.setTrimmed("guardian_email", "guardianDetails.guardianEmail", g.GuardianEmail)
		u.setTrimmed("guardian_relationship", "guardianDetails.relationship", g.Relationship)
	}
	if err := u.err(); err != nil {
		return nil, err
	}
	fields := u.fields

	if req.Year != nil {
		if !model.ValidYear(*req.Year) {
			return nil, ErrInvalidYear
		}
		fields["year"] = *req.Year
	}
	if req.Session != nil {
		if !model.ValidSession(*req.Session) {
			return nil, ErrInvalidSession
		}
		fields["session"] = *req.Session
	}
	if req.Fee != nil {
		if *req.Fee <= 0 {
			return nil, apperrors.BadRequest("Fee must be positive")
		}
		fields["fee"] = *req.Fee
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		fields["date_of_birth"] = dob
	}
	if req.AdmissionDate != nil {
		admitted, err := parseDate(*req.AdmissionDate)
		if err != nil {
			return nil, err
		}
		fields["admission_date"] = admitted
	}

	return s.applyUpdates(ctx, accountID, fields)
}

// GroupByYearAndSession 按 (year, session) 分组，组按 year、session 升序
func (s *studentService) GroupByYearAndSession(ctx context.Context) ([]dto.StudentGroup, error) {
	students, err := s.root.Student.ListForGrouping(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, apperrors.Internal("Failed to group students", err)
	}
	return groupStudents(students), nil
}

// groupStudents 输入已按 year、session 排序
func groupStudents(students []model.Student) []dto.StudentGroup {
	groups := []dto.StudentGroup{}
	for _, st := range students {
		key := dto.StudentGroupKey{Year: st.Year, Session: st.Session}
		if n := len(groups); n == 0 || groups[n-1].ID != key {
			groups = append(groups, dto.StudentGroup{ID: key})
		}
		last := &groups[len(groups)-1]
		last.Students = append(last.Students, dto.GroupedStudent{
			ID:      st.ID,
			Name:    st.Name,
			Email:   st.Email,
			Roll:    st.Roll,
			Phone:   st.Phone,
			Avatar:  st.Avatar,
			Session: st.Session,
		})
	}
	return groups
}

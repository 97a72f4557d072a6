package dto

// ── 账号注册 ──
// 注册接口为 multipart 表单，嵌套字段沿用 address[street] 形式的键名

// RegisterAdminRequest 管理员注册
type RegisterAdminRequest struct {
	Name       string `form:"name"       json:"name"`
	Email      string `form:"email"      json:"email"      binding:"omitempty,email"`
	Password   string `form:"password"   json:"password"`
	Department string `form:"department" json:"department"`
	Phone      string `form:"phone"      json:"phone"`
}

// MissingFields 返回为空的必填字段
func (r *RegisterAdminRequest) MissingFields() []string {
	return missing(
		field{"name", r.Name},
		field{"email", r.Email},
		field{"password", r.Password},
		field{"department", r.Department},
		field{"phone", r.Phone},
	)
}

// RegisterTeacherRequest 教师注册（需邀请码）
type RegisterTeacherRequest struct {
	Name                 string   `form:"name"                 json:"name"`
	Email                string   `form:"email"                json:"email" binding:"omitempty,email"`
	Password             string   `form:"password"             json:"password"`
	Department           string   `form:"department"           json:"department"`
	Phone                string   `form:"phone"                json:"phone"`
	HighestQualification string   `form:"highestQualification" json:"highestQualification"`
	Subjects             []string `form:"subjects"             json:"subjects"`
	Address              string   `form:"address"              json:"address"`
	UniqueCode           string   `form:"uniqueCode"           json:"uniqueCode"`
}

// MissingFields 返回为空的必填字段，address 可选
func (r *RegisterTeacherRequest) MissingFields() []string {
	out := missing(
		field{"name", r.Name},
		field{"email", r.Email},
		field{"password", r.Password},
		field{"department", r.Department},
		field{"phone", r.Phone},
		field{"highestQualification", r.HighestQualification},
		field{"uniqueCode", r.UniqueCode},
	)
	if len(Compact(r.Subjects)) == 0 {
		out = append(out, "subjects")
	}
	return out
}

// RegisterStudentRequest 学生注册（需邀请码）
type RegisterStudentRequest struct {
	Name                 string  `form:"name"                 json:"name"`
	Email                string  `form:"email"                json:"email"       binding:"omitempty,email"`
	Password             string  `form:"password"             json:"password"`
	Roll                 string  `form:"roll"                 json:"roll"`
	UniqueCode           string  `form:"uniqueCode"           json:"uniqueCode"`
	DateOfBirth          string  `form:"dateOfBirth"          json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Phone                string  `form:"phone"                json:"phone"`
	Year                 string  `form:"year"                 json:"year"        binding:"omitempty,academic_year"`
	Fee                  float64 `form:"fee"                  json:"fee"         binding:"omitempty,gt=0"`
	Session              string  `form:"session"              json:"session"     binding:"omitempty,academic_session"`
	HighestQualification string  `form:"highestQualification" json:"highestQualification"`

	AddressStreet  string `form:"address[street]"  json:"-"`
	AddressCity    string `form:"address[city]"    json:"-"`
	AddressState   string `form:"address[state]"   json:"-"`
	AddressZipCode string `form:"address[zipCode]" json:"-"`
	AddressCountry string `form:"address[country]" json:"-"`

	GuardianName         string `form:"guardianDetails[guardianName]"  json:"-"`
	GuardianPhone        string `form:"guardianDetails[guardianPhone]" json:"-"`
	GuardianEmail        string `form:"guardianDetails[guardianEmail]" json:"-" binding:"omitempty,email"`
	GuardianRelationship string `form:"guardianDetails[relationship]"  json:"-"`
}

// MissingFields 返回为空的必填字段
func (r *RegisterStudentRequest) MissingFields() []string {
	out := missing(
		field{"name", r.Name},
		field{"email", r.Email},
		field{"password", r.Password},
		field{"roll", r.Roll},
		field{"uniqueCode", r.UniqueCode},
		field{"dateOfBirth", r.DateOfBirth},
		field{"phone", r.Phone},
		field{"year", r.Year},
		field{"session", r.Session},
		field{"highestQualification", r.HighestQualification},
		field{"address.street", r.AddressStreet},
		field{"address.city", r.AddressCity},
		field{"address.state", r.AddressState},
		field{"address.zipCode", r.AddressZipCode},
		field{"address.country", r.AddressCountry},
		field{"guardianDetails.guardianName", r.GuardianName},
		field{"guardianDetails.guardianPhone", r.GuardianPhone},
		field{"guardianDetails.guardianEmail", r.GuardianEmail},
		field{"guardianDetails.relationship", r.GuardianRelationship},
	)
	if r.Fee == 0 {
		out = append(out, "fee")
	}
	return out
}

// ── 登录 / 会话 ──

// LoginRequest 登录请求，三种角色通用
type LoginRequest struct {
	Email    string `form:"email"    json:"email"`
	Password string `form:"password" json:"password"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"` // 非 Cookie 模式时使用
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// TokenPair 登录 / 刷新成功后返回的 Token 对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ── 资料更新 ──
// 指针字段为 nil 表示不修改

// UpdateAdminRequest 管理员资料更新
type UpdateAdminRequest struct {
	Name       *string `json:"name"       binding:"omitempty,notblank"`
	Email      *string `json:"email"      binding:"omitempty,email"`
	Phone      *string `json:"phone"      binding:"omitempty,notblank"`
	Department *string `json:"department" binding:"omitempty,notblank"`
}

// IsEmpty 未提供任何字段
func (r *UpdateAdminRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Department == nil
}

// UpdateTeacherRequest 教师资料更新
type UpdateTeacherRequest struct {
	Name                 *string   `json:"name"                 binding:"omitempty,notblank"`
	Email                *string   `json:"email"                binding:"omitempty,email"`
	Phone                *string   `json:"phone"                binding:"omitempty,notblank"`
	Address              *string   `json:"address"`
	Department           *string   `json:"department"           binding:"omitempty,notblank"`
	Subjects             *[]string `json:"subjects"             binding:"omitempty,min=1"`
	HighestQualification *string   `json:"highestQualification" binding:"omitempty,notblank"`
}

// IsEmpty 未提供任何字段
func (r *UpdateTeacherRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Address == nil &&
		r.Department == nil && r.Subjects == nil && r.HighestQualification == nil
}

// AddressPayload 学生住址
type AddressPayload struct {
	Street  string `json:"street"  binding:"required"`
	City    string `json:"city"    binding:"required"`
	State   string `json:"state"   binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// GuardianPayload 监护人信息
type GuardianPayload struct {
	GuardianName  string `json:"guardianName"  binding:"required"`
	GuardianPhone string `json:"guardianPhone" binding:"required"`
	GuardianEmail string `json:"guardianEmail" binding:"required,email"`
	Relationship  string `json:"relationship"  binding:"required"`
}

// UpdateStudentRequest 学生资料更新
type UpdateStudentRequest struct {
	Name                 *string          `json:"name"                 binding:"omitempty,notblank"`
	Email                *string          `json:"email"                binding:"omitempty,email"`
	Phone                *string          `json:"phone"                binding:"omitempty,notblank"`
	Address              *AddressPayload  `json:"address"`
	Year                 *string          `json:"year"                 binding:"omitempty,academic_year"`
	Fee                  *float64         `json:"fee"                  binding:"omitempty,gt=0"`
	Session              *string          `json:"session"              binding:"omitempty,academic_session"`
	HighestQualification *string          `json:"highestQualification" binding:"omitempty,notblank"`
	DateOfBirth          *string          `json:"dateOfBirth"          binding:"omitempty,datetime=2006-01-02"`
	GuardianDetails      *GuardianPayload `json:"guardianDetails"`
	AdmissionDate        *string          `json:"admissionDate"        binding:"omitempty,datetime=2006-01-02"`
}

// IsEmpty 未提供任何字段
func (r *UpdateStudentRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Address == nil &&
		r.Year == nil && r.Fee == nil && r.Session == nil && r.HighestQualification == nil &&
		r.DateOfBirth == nil && r.GuardianDetails == nil && r.AdmissionDate == nil
}

// ── helpers ──

type field struct {
	name  string
	value string
}

func missing(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if isBlank(f.value) {
			out = append(out, f.name)
		}
	}
	return out
}

package user

import (
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleOwner   = "owner"
)

// Plan tiers
const (
	PlanFree    = "free_user"
	PlanPremium = "premium_user"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleOwner}

	rolePriorities = map[string]int{
		RoleOwner:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Nickname     string    `json:"nickname,omitempty"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Birthday     string    `json:"birthday,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Plan         string    `json:"plan,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsOwner() bool   { return u.Role == RoleOwner }

// IsStaff reports whether the user may use the admin panel.
func (u *User) IsStaff() bool { return u.IsTeacher() || u.IsOwner() }

// DefaultAvatar returns the initials avatar the frontend falls back to.
func DefaultAvatar(name string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name)
}

// NewUser contains information needed to register a new User.
// Registration only completes after the emailed OTP is confirmed.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Nickname        string `json:"nickname"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,knownrole"`
	SignupCode      string `json:"signup_code"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Nickname = core.CleanString(nu.Nickname)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Nickname == "" {
		nu.Nickname = nu.Name
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateProfile defines the editable profile fields. Zero values leave the
// original value in place; the draft only lands on explicit save.
type UpdateProfile struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Plan     string `json:"plan" validate:"omitempty,oneof=free_user premium_user"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Nickname = core.CleanString(up.Nickname)
	up.Phone = core.CleanString(up.Phone)
	return validate.Struct(up)
}

// Apply merges the draft into usr, field by field.
func (up UpdateProfile) Apply(usr User) User {
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Nickname != "" {
		usr.Nickname = up.Nickname
	}
	if up.Avatar != "" {
		usr.Avatar = up.Avatar
	}
	if up.Gender != "" {
		usr.Gender = up.Gender
	}
	if up.Birthday != "" {
		usr.Birthday = up.Birthday
	}
	if up.Phone != "" {
		usr.Phone = up.Phone
	}
	if up.Address != "" {
		usr.Address = up.Address
	}
	if up.Plan != "" {
		usr.Plan = up.Plan
	}
	usr.UpdatedAt = time.Now().UTC()
	return usr
}

type ResetPassword struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return validate.Struct(rp)
}

package user_test

import (
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
	emailsvc "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/services/email"
	kvrepos "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/kv"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/memstore"
)

func setup(t *testing.T) (*user.ServiceMock, user.Repository, *memstore.Store) {
	t.Helper()

	conf := &core.Config{
		AppName:           "EduExam",
		TestMode:          true,
		DefaultFromEmail:  mail.Address{Name: "EduExam", Address: "noreply@test.cm"},
		TeacherSignupCode: "GV-2024",
		OTPTimeout:        15 * time.Minute,
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	store := memstore.New()
	repo := kvrepos.NewUserRepository(store)
	svc := user.NewServiceMock(repo, emailsvc.NewConsoleServiceMock(conf), validate, conf)
	return svc, repo, store
}

func newUser(role, signupCode string) user.NewUser {
	return user.NewUser{
		Name:            "Jane Doe",
		Email:           "jane@test.cm",
		Password:        "LeSecret#1",
		PasswordConfirm: "LeSecret#1",
		Role:            role,
		SignupCode:      signupCode,
	}
}

func registerAndConfirm(t *testing.T, svc *user.ServiceMock, nu user.NewUser) user.User {
	t.Helper()
	assert.NoError(t, svc.Register(nu))
	usr, err := svc.ConfirmRegistration(nu.Email, svc.LastCode)
	assert.NoError(t, err)
	return usr
}

func TestService_Register(t *testing.T) {
	t.Run("password mismatch", func(t *testing.T) {
		svc, _, _ := setup(t)
		nu := newUser(user.RoleStudent, "")
		nu.PasswordConfirm = "Other#1"
		assert.Error(t, svc.Register(nu))
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, _, _ := setup(t)
		assert.Error(t, svc.Register(newUser("admin", "")))
	})

	t.Run("teacher needs the signup code", func(t *testing.T) {
		svc, _, _ := setup(t)
		err := svc.Register(newUser(user.RoleTeacher, "wrong"))
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("owner cannot self-register", func(t *testing.T) {
		svc, _, _ := setup(t)
		assert.Error(t, svc.Register(newUser(user.RoleOwner, "")))
	})

	t.Run("no user exists until the code is confirmed", func(t *testing.T) {
		svc, repo, _ := setup(t)
		assert.NoError(t, svc.Register(newUser(user.RoleStudent, "")))

		_, err := repo.GetUserByEmail("jane@test.cm")
		assert.Equal(t, user.ErrNotFound, err)

		_, err = svc.ConfirmRegistration("jane@test.cm", "000000")
		assert.Equal(t, user.ErrInvalidOTP, err)

		usr, err := svc.ConfirmRegistration("jane@test.cm", svc.LastCode)
		assert.NoError(t, err)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Equal(t, user.PlanFree, usr.Plan)
		assert.NotEmpty(t, usr.ID)
		assert.NotEmpty(t, usr.Avatar)
		assert.NoError(t, usr.CheckPassword("LeSecret#1"))
	})

	t.Run("teacher with the right code", func(t *testing.T) {
		svc, _, _ := setup(t)
		usr := registerAndConfirm(t, svc, newUser(user.RoleTeacher, "GV-2024"))
		assert.True(t, usr.IsTeacher())
		assert.True(t, usr.IsStaff())
	})

	t.Run("email already taken", func(t *testing.T) {
		svc, _, _ := setup(t)
		registerAndConfirm(t, svc, newUser(user.RoleStudent, ""))
		assert.Error(t, svc.Register(newUser(user.RoleStudent, "")))
	})
}

func TestService_Authenticate(t *testing.T) {
	svc, _, _ := setup(t)
	registerAndConfirm(t, svc, newUser(user.RoleStudent, ""))

	tests := []struct {
		name     string
		email    string
		password string
		role     string
		wantErr  error
	}{
		{name: "ok", email: "jane@test.cm", password: "LeSecret#1", role: user.RoleStudent},
		{name: "email is case-insensitive", email: "Jane@Test.CM", password: "LeSecret#1", role: user.RoleStudent},
		{name: "unknown email", email: "john@test.cm", password: "LeSecret#1", role: user.RoleStudent, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", email: "jane@test.cm", password: "nope", role: user.RoleStudent, wantErr: user.ErrInvalidCredentials},
		{name: "wrong portal role", email: "jane@test.cm", password: "LeSecret#1", role: user.RoleTeacher, wantErr: user.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(tt.email, tt.password, tt.role)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.False(t, usr.LastLogin.IsZero())
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc, _, _ := setup(t)
	registerAndConfirm(t, svc, newUser(user.RoleStudent, ""))

	rp := user.ResetPassword{
		Email:           "jane@test.cm",
		Password:        "NewSecret#2",
		PasswordConfirm: "NewSecret#2",
	}

	t.Run("without verification", func(t *testing.T) {
		_, err := svc.ResetPassword(rp)
		assert.Equal(t, user.ErrOTPNotVerified, err)
	})

	t.Run("full flow", func(t *testing.T) {
		assert.NoError(t, svc.RequestPasswordReset("jane@test.cm"))
		assert.NoError(t, svc.VerifyOTP("jane@test.cm", user.PurposeForgotPassword, svc.LastCode))

		usr, err := svc.ResetPassword(rp)
		assert.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("NewSecret#2"))
		assert.Error(t, usr.CheckPassword("LeSecret#1"))

		_, err = svc.Authenticate("jane@test.cm", "NewSecret#2", user.RoleStudent)
		assert.NoError(t, err)
	})

	t.Run("verification arms a single reset", func(t *testing.T) {
		_, err := svc.ResetPassword(rp)
		assert.Equal(t, user.ErrOTPNotVerified, err)
	})
}

func TestService_Delete(t *testing.T) {
	svc, repo, _ := setup(t)
	usr := registerAndConfirm(t, svc, newUser(user.RoleStudent, ""))

	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, user.ErrNotFound, svc.Delete("missing"))
	})

	t.Run("owner accounts are off limits", func(t *testing.T) {
		boss := user.User{ID: "owner-1", Name: "Boss", Email: "boss@test.cm", Role: user.RoleOwner}
		_, err := repo.CreateUser(boss)
		assert.NoError(t, err)

		err = svc.Delete("owner-1")
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	assert.NoError(t, svc.Delete(usr.ID))
	_, err := repo.GetUserByID(usr.ID)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_UpdateProfile(t *testing.T) {
	svc, _, _ := setup(t)
	usr := registerAndConfirm(t, svc, newUser(user.RoleStudent, ""))

	updated, err := svc.UpdateProfile(usr.ID, user.UpdateProfile{
		Nickname: "JD",
		Phone:    "+237 600 000 000",
		Plan:     user.PlanPremium,
	})
	assert.NoError(t, err)
	assert.Equal(t, "JD", updated.Nickname)
	assert.Equal(t, user.PlanPremium, updated.Plan)
	assert.Equal(t, usr.Name, updated.Name, "omitted fields keep their value")

	_, err = svc.UpdateProfile(usr.ID, user.UpdateProfile{Plan: "gold"})
	assert.Error(t, err)
}

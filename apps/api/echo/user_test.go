package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

func Test_userApi_registerAndLogin(t *testing.T) {
	env := setup(t)

	token, usr := env.signUpStudent(t)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.RoleStudent, usr.Role)

	t.Run("login", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
			"email":    "jane@test.cm",
			"password": "LeSecret#1",
			"role":     user.RoleStudent,
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res LoginResponse
		decode(t, rec, &res)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, usr.ID, res.User.ID)
	})

	t.Run("login against the wrong portal", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
			"email":    "jane@test.cm",
			"password": "LeSecret#1",
			"role":     user.RoleTeacher,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
			"email":    "jane@test.cm",
			"password": "nope",
			"role":     user.RoleStudent,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong OTP on confirm", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
			"name":             "John",
			"email":            "john@test.cm",
			"password":         "LeSecret#1",
			"password_confirm": "LeSecret#1",
			"role":             user.RoleStudent,
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/users/register-confirm", "", map[string]string{
			"email": "john@test.cm",
			"code":  "000000",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("teacher signup without the code", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
			"name":             "Imposter",
			"email":            "fake@test.cm",
			"password":         "LeSecret#1",
			"password_confirm": "LeSecret#1",
			"role":             user.RoleTeacher,
			"signup_code":      "wrong",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_userApi_profile(t *testing.T) {
	env := setup(t)
	token, usr := env.signUpStudent(t)

	t.Run("me requires auth", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/users/me", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, usr.ID, got.ID)
	})

	t.Run("update", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/users/me", token, map[string]string{
			"nickname": "JD",
			"plan":     user.PlanPremium,
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, "JD", got.Nickname)
		assert.Equal(t, user.PlanPremium, got.Plan)
	})

	t.Run("invalid plan", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/users/me", token, map[string]string{"plan": "gold"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)
	studentToken, _ := env.signUpStudent(t)
	teacherToken, _ := env.signUpTeacher(t)

	rec := env.do(t, http.MethodGet, "/v1/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "the directory is staff only")

	rec = env.do(t, http.MethodGet, "/v1/users", teacherToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []user.User
	decode(t, rec, &users)
	assert.Len(t, users, 2)
}

func Test_userApi_delete(t *testing.T) {
	env := setup(t)
	studentToken, student := env.signUpStudent(t)
	teacherToken, _ := env.signUpTeacher(t)
	ownerToken, owner := env.createOwner(t)

	t.Run("deletion is owner only", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/users/"+student.ID, studentToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodDelete, "/v1/users/"+student.ID, teacherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "teachers cannot delete accounts")
	})

	t.Run("an owner cannot delete their own account", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/users/"+owner.ID, ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/users/nope", ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/users/"+student.ID, ownerToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
			"email":    "jane@test.cm",
			"password": "LeSecret#1",
			"role":     user.RoleStudent,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "a deleted account cannot sign in")
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	env.signUpStudent(t)

	rec := env.do(t, http.MethodPost, "/v1/users/password-reset", "", map[string]string{"email": "jane@test.cm"})
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("an unknown email gets the same response", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/password-reset", "", map[string]string{"email": "nobody@test.cm"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reset without verification", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/password-reset-confirm", "", map[string]string{
			"email":            "jane@test.cm",
			"password":         "NewSecret#2",
			"password_confirm": "NewSecret#2",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("full flow", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/password-reset-verify", "", map[string]string{
			"email": "jane@test.cm",
			"code":  env.usrSvc.LastCode,
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/v1/users/password-reset-confirm", "", map[string]string{
			"email":            "jane@test.cm",
			"password":         "NewSecret#2",
			"password_confirm": "NewSecret#2",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
			"email":    "jane@test.cm",
			"password": "NewSecret#2",
			"role":     user.RoleStudent,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	env := setup(t)
	token, _ := env.signUpStudent(t)

	rec := env.do(t, http.MethodPost, "/v1/users/token-refresh", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res TokenResponse
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Token)
}

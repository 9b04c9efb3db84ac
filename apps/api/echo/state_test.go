package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/app"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
)

func Test_stateApi(t *testing.T) {
	env := setup(t)
	studentToken, _ := env.signUpStudent(t)
	teacherToken, _ := env.signUpTeacher(t)

	t.Run("a signed-in user lands on the dashboard", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/state", studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var st StateResponse
		decode(t, rec, &st)
		assert.Equal(t, string(app.ViewDashboard), st.View)
		assert.Equal(t, app.ThemeDark, st.Theme)
	})

	t.Run("navigate", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/state/navigate", studentToken, NavigateRequest{View: "LESSONS"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var st StateResponse
		decode(t, rec, &st)
		assert.Equal(t, "LESSONS", st.View)
	})

	t.Run("unknown view", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/state/navigate", studentToken, NavigateRequest{View: "SETTINGS"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("the admin panel is staff only", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/state/navigate", studentToken, NavigateRequest{View: "ADMIN_PANEL"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/state/navigate", teacherToken, NavigateRequest{View: "ADMIN_PANEL"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("toggle theme", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/state/theme", studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var st StateResponse
		decode(t, rec, &st)
		assert.Equal(t, app.ThemeLight, st.Theme)
	})
}

func Test_stateApi_isolation(t *testing.T) {
	env := setup(t)
	teacherToken, _ := env.signUpTeacher(t)
	studentToken, _ := env.signUpStudent(t)

	// the teacher's state exists before the student's first touch
	rec := env.do(t, http.MethodGet, "/v1/state", teacherToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/state/navigate", studentToken, NavigateRequest{View: "ADMIN_PANEL"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "a student never inherits another user's role")

	rec = env.do(t, http.MethodPost, "/v1/state/navigate", teacherToken, NavigateRequest{View: "ADMIN_PANEL"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("themes are per user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/state/theme", studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/state", teacherToken, nil)
		var st StateResponse
		decode(t, rec, &st)
		assert.Equal(t, app.ThemeDark, st.Theme)
	})
}

func Test_stateApi_busy(t *testing.T) {
	env := setup(t)
	teacherToken, teacher := env.signUpTeacher(t)

	env.ai.Draft = exam.Draft{
		Title:    "Đề thi thử",
		Subject:  "Toán",
		Duration: 45,
		Questions: []exam.Question{
			{ID: 1, Text: "1+1?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 1},
		},
	}

	t.Run("navigation is refused while a scan is in flight", func(t *testing.T) {
		env.ai.OnScan = func() {
			rec := env.do(t, http.MethodPost, "/v1/state/navigate", teacherToken, NavigateRequest{View: "LESSONS"})
			assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

			rec = env.do(t, http.MethodGet, "/v1/state", teacherToken, nil)
			var st StateResponse
			decode(t, rec, &st)
			assert.True(t, st.Busy)
		}
		defer func() { env.ai.OnScan = nil }()

		rec := env.upload(t, "/v1/exams/digitize", teacherToken, []byte("img"))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodGet, "/v1/state", teacherToken, nil)
		var st StateResponse
		decode(t, rec, &st)
		assert.False(t, st.Busy)

		rec = env.do(t, http.MethodPost, "/v1/state/navigate", teacherToken, NavigateRequest{View: "LESSONS"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("a scan finishing after sign-out is discarded", func(t *testing.T) {
		env.ai.OnScan = func() { env.states.forUser(teacher).SignOut() }
		defer func() { env.ai.OnScan = nil }()

		rec := env.upload(t, "/v1/exams/digitize", teacherToken, []byte("img"))
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})
}

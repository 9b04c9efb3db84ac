package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/contact"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/lesson"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
	aisvc "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/services/ai"
	emailsvc "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/services/email"
	kvrepos "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/kv"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/memstore"
)

type testEnv struct {
	server  Server
	conf    *core.Config
	store   *memstore.Store
	usrRepo user.Repository
	usrSvc  *user.ServiceMock
	ai      *aisvc.DummyService
	examSvc *exam.Service
	states  *stateRegistry
}

type logStub struct{}

func (logStub) Debug(string, ...interface{}) {}
func (logStub) Info(string, ...interface{})  {}
func (logStub) Warn(string, ...interface{})  {}
func (logStub) Error(string, ...interface{}) {}
func (logStub) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		TestMode:          true,
		AppName:           "EduExam",
		SecretKey:         "test-secret",
		DefaultFromEmail:  mail.Address{Name: "EduExam", Address: "noreply@test.cm"},
		TeacherSignupCode: "GV-2024",
		OTPTimeout:        15 * time.Minute,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 2 * time.Hour,
		},
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	store := memstore.New()
	ai := aisvc.NewDummyService()
	usrRepo := kvrepos.NewUserRepository(store)
	usrSvc := user.NewServiceMock(usrRepo, emailsvc.NewConsoleServiceMock(conf), validate, conf)
	examSvc := exam.NewService(store, ai, exam.SeedExams())

	srv := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logStub{},
		Store:          store,
		UserSvc:        usrSvc,
		ExamSvc:        examSvc,
		LessonSvc:      lesson.NewService(store, lesson.SeedLessons()),
		ContactSvc:     contact.NewService(store),
		Assistant:      ai,
		Validate:       validate,
		Translator:     translator,
	})

	return &testEnv{
		server:  srv,
		conf:    conf,
		store:   store,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		ai:      ai,
		examSvc: examSvc,
		states:  srv.(*server).states,
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, data interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if data != nil {
		assert.NoError(t, json.NewEncoder(&body).Encode(data))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

// upload posts contents as a multipart "file" field.
func (env *testEnv) upload(t *testing.T, path, token string, contents []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "de-thi.png")
	assert.NoError(t, err)
	_, _ = fw.Write(contents)
	assert.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

// signUp provisions a user through the full register/confirm flow and
// returns a fresh token.
func (env *testEnv) signUp(t *testing.T, name, email, role, signupCode string) (string, user.User) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"name":             name,
		"email":            email,
		"password":         "LeSecret#1",
		"password_confirm": "LeSecret#1",
		"role":             role,
		"signup_code":      signupCode,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/v1/users/register-confirm", "", map[string]string{
		"email": email,
		"code":  env.usrSvc.LastCode,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res LoginResponse
	decode(t, rec, &res)
	return res.Token, res.User
}

func (env *testEnv) signUpStudent(t *testing.T) (string, user.User) {
	return env.signUp(t, "Jane Doe", "jane@test.cm", user.RoleStudent, "")
}

func (env *testEnv) signUpTeacher(t *testing.T) (string, user.User) {
	return env.signUp(t, "Cô Lan", "lan@test.cm", user.RoleTeacher, "GV-2024")
}

// createOwner seeds an owner account directly, as the admin CLI would, and
// logs it in through the API.
func (env *testEnv) createOwner(t *testing.T) (string, user.User) {
	t.Helper()

	usr := user.User{
		ID:        "owner-1",
		Name:      "Boss",
		Email:     "boss@test.cm",
		Role:      user.RoleOwner,
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(t, usr.SetPassword("LeSecret#1"))
	_, err := env.usrRepo.CreateUser(usr)
	assert.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
		"email":    usr.Email,
		"password": "LeSecret#1",
		"role":     user.RoleOwner,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res LoginResponse
	decode(t, rec, &res)
	return res.Token, res.User
}

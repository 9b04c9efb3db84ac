package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
)

func customExam() exam.Exam {
	return exam.Exam{
		ID:       "c-1",
		Title:    "Đề giữa kỳ",
		Subject:  "Lý",
		Duration: 30,
		Questions: []exam.Question{
			{ID: 1, Text: "1+1?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 1},
			{ID: 2, Text: "2+2?", Options: []string{"2", "3", "4", "5"}, CorrectAnswer: 2},
		},
	}
}

func Test_examApi_crud(t *testing.T) {
	env := setup(t)
	studentToken, _ := env.signUpStudent(t)
	teacherToken, _ := env.signUpTeacher(t)

	t.Run("listing requires auth", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/exams", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("students see the seed exams", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/exams", studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var exams []exam.Exam
		decode(t, rec, &exams)
		assert.Len(t, exams, len(exam.SeedExams()))
	})

	t.Run("creation is staff only", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/exams", studentToken, customExam())
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/exams", teacherToken, customExam())
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("duplicate id", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/exams", teacherToken, customExam())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("a malformed exam is rejected", func(t *testing.T) {
		bad := customExam()
		bad.ID = "c-bad"
		bad.Duration = 0
		bad.Questions[0].Options = []string{"a", "b"}
		bad.Questions[0].CorrectAnswer = 7

		rec := env.do(t, http.MethodPost, "/v1/exams", teacherToken, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodGet, "/v1/exams/c-bad", studentToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "nothing unscoreable ever lands in the library")
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/exams/c-1", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodDelete, "/v1/exams/c-1", teacherToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/exams/c-1", studentToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_examApi_attempt(t *testing.T) {
	env := setup(t)
	token, _ := env.signUpStudent(t)
	teacherToken, _ := env.signUpTeacher(t)

	rec := env.do(t, http.MethodPost, "/v1/exams", teacherToken, customExam())
	assert.Equal(t, http.StatusCreated, rec.Code)

	t.Run("no attempt yet", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/attempt", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("start", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attempt/c-1", token, nil)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var status AttemptStatus
		decode(t, rec, &status)
		assert.Equal(t, "c-1", status.ExamID)
		assert.Equal(t, 30*60, status.Remaining)
		assert.False(t, status.Finished)
	})

	t.Run("only one attempt at a time", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attempt/c-1", token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("answer and submit", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/attempt/answers", token, AnswerRequest{QuestionID: 1, OptionIndex: 1})
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = env.do(t, http.MethodPut, "/v1/attempt/answers", token, AnswerRequest{QuestionID: 2, OptionIndex: 0})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/attempt/submit", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var res exam.Result
		decode(t, rec, &res)
		assert.Equal(t, exam.Result{Score: 1, Total: 2}, res)
	})

	t.Run("submit is idempotent", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attempt/submit", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var res exam.Result
		decode(t, rec, &res)
		assert.Equal(t, exam.Result{Score: 1, Total: 2}, res)
	})

	t.Run("answers after the end are rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/attempt/answers", token, AnswerRequest{QuestionID: 2, OptionIndex: 2})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("result and review", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/attempt/result", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/attempt/review", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var review []exam.QuestionReview
		decode(t, rec, &review)
		assert.Len(t, review, 2)
		assert.True(t, review[0].IsCorrect)
		assert.False(t, review[1].IsCorrect)
	})

	t.Run("a finished attempt can be replaced", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/attempt/c-1", token, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)

		// abandoning yields no result
		rec = env.do(t, http.MethodDelete, "/v1/attempt", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = env.do(t, http.MethodGet, "/v1/attempt/result", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_examApi_digitize(t *testing.T) {
	env := setup(t)
	teacherToken, _ := env.signUpTeacher(t)

	env.ai.Draft = exam.Draft{
		Title:    "Đề thi thử",
		Subject:  "Toán",
		Duration: 45,
		Questions: []exam.Question{
			{ID: 1, Text: "1+1?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 1, Explanation: "ok"},
		},
	}

	t.Run("extracts a draft", func(t *testing.T) {
		rec := env.upload(t, "/v1/exams/digitize", teacherToken, []byte("img-bytes"))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var draft exam.Draft
		decode(t, rec, &draft)
		assert.Equal(t, "Đề thi thử", draft.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/exams/digitize", teacherToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("scanner failure surfaces its message", func(t *testing.T) {
		env.ai.Err = exam.NewDigitizationError("mờ quá", nil)
		defer func() { env.ai.Err = nil }()
		rec := env.upload(t, "/v1/exams/digitize", teacherToken, []byte("img-bytes"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("approve persists the draft", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/exams/approve", teacherToken, env.ai.Draft)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var ex exam.Exam
		decode(t, rec, &ex)
		assert.Contains(t, ex.ID, "ai-")

		got, err := env.examSvc.Get(ex.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Đề thi thử", got.Title)
	})
}

package exam

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

var (
	// errors
	ErrNotFound   = errors.New("exam not found")
	ErrExamExists = errors.New("an exam with this id already exists")
)

// Service holds the merged exam collection: immutable seed exams plus the
// custom subset persisted under core.KeyCustomExams. Every mutation recomputes
// the custom subset and writes it back in the same step.
type Service struct {
	mu      sync.RWMutex
	store   core.Store
	scanner Scanner
	seedIDs map[string]bool
	exams   []Exam // seed first, then custom, insertion-ordered
}

func NewService(store core.Store, scanner Scanner, seed []Exam) *Service {
	svc := &Service{
		store:   store,
		scanner: scanner,
		seedIDs: make(map[string]bool, len(seed)),
	}
	svc.exams = append(svc.exams, seed...)
	for _, ex := range seed {
		svc.seedIDs[ex.ID] = true
	}

	var custom []Exam
	if ok, err := store.Load(core.KeyCustomExams, &custom); err == nil && ok {
		for _, ex := range custom {
			if !svc.has(ex.ID) {
				svc.exams = append(svc.exams, ex)
			}
		}
	}
	return svc
}

func (svc *Service) has(id string) bool {
	for _, ex := range svc.exams {
		if ex.ID == id {
			return true
		}
	}
	return false
}

// persist writes the custom subset (everything not seed-derived) back to the
// store. Callers hold the write lock.
func (svc *Service) persist() error {
	custom := make([]Exam, 0, len(svc.exams))
	for _, ex := range svc.exams {
		if !svc.seedIDs[ex.ID] {
			custom = append(custom, ex)
		}
	}
	return svc.store.Save(core.KeyCustomExams, custom)
}

func (svc *Service) QueryAll() []Exam {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Exam, len(svc.exams))
	copy(out, svc.exams)
	return out
}

func (svc *Service) Get(id string) (Exam, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, ex := range svc.exams {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exam{}, ErrNotFound
}

// Create adds a custom exam and persists the custom subset synchronously.
func (svc *Service) Create(ex Exam) (Exam, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if ex.ID == "" {
		return Exam{}, errors.New("exam id is required")
	}
	if err := ex.Validate(); err != nil {
		return Exam{}, core.NewValidationError(err)
	}
	if svc.has(ex.ID) {
		return Exam{}, core.NewValidationError(ErrExamExists, core.FieldError{Field: "id", Error: ErrExamExists.Error()})
	}

	svc.exams = append(svc.exams, ex)
	if err := svc.persist(); err != nil {
		svc.exams = svc.exams[:len(svc.exams)-1]
		return Exam{}, err
	}
	return ex, nil
}

// Delete removes the exam from the in-memory view. Seed-derived ids disappear
// from the view only; the persisted custom subset never contained them.
func (svc *Service) Delete(id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for i, ex := range svc.exams {
		if ex.ID == id {
			svc.exams = append(svc.exams[:i], svc.exams[i+1:]...)
			return svc.persist()
		}
	}
	return ErrNotFound
}

// Digitize sends the document to the scanner and validates the returned
// draft. Nothing is persisted; the draft awaits explicit approval.
func (svc *Service) Digitize(ctx context.Context, data []byte, mimeType string) (Draft, error) {
	draft, err := svc.scanner.ScanExam(ctx, data, mimeType)
	if err != nil {
		var dErr *DigitizationError
		if errors.As(err, &dErr) {
			return Draft{}, err
		}
		return Draft{}, NewDigitizationError("Lỗi quét đề thi. Vui lòng chụp ảnh rõ nét hơn và thử lại.", err)
	}
	if err := draft.Validate(); err != nil {
		return Draft{}, NewDigitizationError("Dữ liệu đề thi trích xuất không hợp lệ: "+err.Error(), err)
	}
	return draft, nil
}

// Approve turns a reviewed draft into a persisted custom exam.
func (svc *Service) Approve(d Draft) (Exam, error) {
	if err := d.Validate(); err != nil {
		return Exam{}, core.NewValidationError(err)
	}
	return svc.Create(Exam{
		ID:        "ai-" + uuid.NewString(),
		Title:     d.Title,
		Subject:   d.Subject,
		Duration:  d.Duration,
		Questions: d.Questions,
	})
}

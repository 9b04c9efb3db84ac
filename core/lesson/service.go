package lesson

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

var ErrNotFound = errors.New("lesson not found")

// Service holds the merged lesson library: immutable seed lessons plus the
// custom subset persisted under core.KeyCustomLessons, with the same
// seed∪custom semantics as the exam collection.
type Service struct {
	mu      sync.RWMutex
	store   core.Store
	seedIDs map[string]bool
	lessons []Lesson
}

func NewService(store core.Store, seed []Lesson) *Service {
	svc := &Service{
		store:   store,
		seedIDs: make(map[string]bool, len(seed)),
	}
	svc.lessons = append(svc.lessons, seed...)
	for _, ls := range seed {
		svc.seedIDs[ls.ID] = true
	}

	var custom []Lesson
	if ok, err := store.Load(core.KeyCustomLessons, &custom); err == nil && ok {
		for _, ls := range custom {
			if !svc.has(ls.ID) {
				// custom lessons are shown newest-first, ahead of the seeds
				svc.lessons = append([]Lesson{ls}, svc.lessons...)
			}
		}
	}
	return svc
}

func (svc *Service) has(id string) bool {
	for _, ls := range svc.lessons {
		if ls.ID == id {
			return true
		}
	}
	return false
}

func (svc *Service) persist() error {
	custom := make([]Lesson, 0, len(svc.lessons))
	for _, ls := range svc.lessons {
		if !svc.seedIDs[ls.ID] {
			custom = append(custom, ls)
		}
	}
	return svc.store.Save(core.KeyCustomLessons, custom)
}

func (svc *Service) QueryAll() []Lesson {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Lesson, len(svc.lessons))
	copy(out, svc.lessons)
	return out
}

func (svc *Service) Get(id string) (Lesson, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, ls := range svc.lessons {
		if ls.ID == id {
			return ls, nil
		}
	}
	return Lesson{}, ErrNotFound
}

// Publish confirms a previewed lesson: it gets an id, is prepended to the
// library, and the custom subset is persisted in the same step.
func (svc *Service) Publish(pending Lesson) (Lesson, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	pending.ID = "ls-" + uuid.NewString()
	svc.lessons = append([]Lesson{pending}, svc.lessons...)
	if err := svc.persist(); err != nil {
		svc.lessons = svc.lessons[1:]
		return Lesson{}, err
	}
	return pending, nil
}

// Delete removes the lesson from the view; seed ids vanish from the view
// only, the persisted custom subset never contained them.
func (svc *Service) Delete(id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for i, ls := range svc.lessons {
		if ls.ID == id {
			svc.lessons = append(svc.lessons[:i], svc.lessons[i+1:]...)
			return svc.persist()
		}
	}
	return ErrNotFound
}

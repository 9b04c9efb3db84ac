package exam

import (
	"context"
	"sync"
	"time"
)

type (
	Result struct {
		Score int `json:"score"`
		Total int `json:"total"`
	}

	// QuestionReview is one row of the post-submission explanation listing.
	QuestionReview struct {
		QuestionID  int    `json:"question_id"`
		Text        string `json:"text"`
		Selected    int    `json:"selected"` // -1 when unanswered
		Correct     int    `json:"correct"`
		IsCorrect   bool   `json:"is_correct"`
		Explanation string `json:"explanation"`
	}

	// Session is one exam attempt: selected answers, the countdown, and the
	// at-most-once submission. The 1s timer goroutine and user actions
	// interleave; the mutex plus the finished flag guarantee a single scoring
	// pass even when manual submit races countdown expiry.
	Session struct {
		mu        sync.Mutex
		exam      Exam
		answers   map[int]int
		remaining int // seconds
		finished  bool
		abandoned bool
		result    Result
		cancel    context.CancelFunc
		onFinish  func(Result)
	}
)

// NewSession prepares an attempt: answers reset, remaining = duration×60s.
// onFinish (optional) fires exactly once, on manual submit or expiry.
func NewSession(ex Exam, onFinish func(Result)) *Session {
	return &Session{
		exam:      ex,
		answers:   make(map[int]int),
		remaining: ex.Duration * 60,
		onFinish:  onFinish,
	}
}

// Start launches the one-second countdown. The ticker stops on submission,
// on Stop, or when ctx is cancelled — whichever comes first.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.finished || s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
}

func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Tick() {
				return
			}
		}
	}
}

// Tick advances the countdown by one second and reports whether the session
// is over. At zero it auto-submits exactly once.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return true
	}
	if s.remaining > 0 {
		s.remaining--
	}
	expired := s.remaining == 0
	s.mu.Unlock()

	if expired {
		s.Submit()
		return true
	}
	return false
}

// SetAnswer records a single-select answer; a later call for the same
// question overwrites the earlier one. Ignored once the attempt is over.
func (s *Session) SetAnswer(questionID, optionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.answers[questionID] = optionIndex
}

// Submit stops the countdown and scores the attempt. Unanswered questions
// count as incorrect. A second call — e.g. a late timer firing after a
// manual submit — is a no-op returning the original result.
func (s *Session) Submit() Result {
	s.mu.Lock()
	if s.finished {
		res := s.result
		s.mu.Unlock()
		return res
	}
	s.finished = true
	s.stopLocked()

	score := 0
	for _, q := range s.exam.Questions {
		if sel, ok := s.answers[q.ID]; ok && sel == q.CorrectAnswer {
			score++
		}
	}
	s.result = Result{Score: score, Total: len(s.exam.Questions)}
	res := s.result
	onFinish := s.onFinish
	s.mu.Unlock()

	if onFinish != nil {
		onFinish(res)
	}
	return res
}

// Stop abandons the attempt: the countdown is cancelled and no result is
// produced. Used when the user navigates away without submitting.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	s.abandoned = true
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) Exam() Exam { return s.exam }

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) Answers() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Result returns the score once the attempt was submitted (not abandoned).
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.finished && !s.abandoned
}

// Review builds the per-question explanation listing from the finished
// attempt, without re-entering the exam.
func (s *Session) Review() []QuestionReview {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]QuestionReview, 0, len(s.exam.Questions))
	for _, q := range s.exam.Questions {
		sel, ok := s.answers[q.ID]
		if !ok {
			sel = -1
		}
		out = append(out, QuestionReview{
			QuestionID:  q.ID,
			Text:        q.Text,
			Selected:    sel,
			Correct:     q.CorrectAnswer,
			IsCorrect:   ok && sel == q.CorrectAnswer,
			Explanation: q.Explanation,
		})
	}
	return out
}

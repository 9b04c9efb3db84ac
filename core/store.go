package core

// Store is the persistence boundary: independent JSON-encoded keys, each
// readable and writable on its own. Implementations must treat a single-key
// write as atomic; no transaction ever spans multiple keys.
//
// Load reports ok=false with a nil error when the key is absent. Malformed
// persisted data surfaces as ok=false with the decode error; callers fail
// closed to their seed/default state instead of crashing.
type Store interface {
	Load(key string, dest interface{}) (ok bool, err error)
	Save(key string, value interface{}) error
	Delete(key string) error
}

// Persisted keys. Exact names are an implementation choice; what matters is
// that each key stays independently readable/writable. The session and theme
// keys are suffixed with the user ID by the per-user state container.
const (
	KeySession        = "eduexam:session"
	KeyUsers          = "eduexam:database"
	KeyCustomExams    = "eduexam:custom_exams"
	KeyCustomLessons  = "eduexam:lessons"
	KeyMessages       = "eduexam:messages"
	KeyTheme          = "eduexam:theme"
	KeySnakeHighScore = "eduexam:snake_highscore"
)

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/memstore"
)

func student() user.User {
	return user.User{ID: "s-1", Name: "Jane", Email: "jane@test.cm", Role: user.RoleStudent}
}

func TestNew(t *testing.T) {
	t.Run("fresh start lands on AUTH", func(t *testing.T) {
		st := New(memstore.New())
		assert.Equal(t, ViewAuth, st.View())
		_, ok := st.Session()
		assert.False(t, ok)
		assert.Equal(t, ThemeDark, st.Theme())
	})

	t.Run("a persisted session resumes on the dashboard", func(t *testing.T) {
		store := memstore.New()
		assert.NoError(t, store.Save(core.KeySession, student()))
		assert.NoError(t, store.Save(core.KeyTheme, ThemeLight))

		st := New(store)
		assert.Equal(t, ViewDashboard, st.View())
		usr, ok := st.Session()
		assert.True(t, ok)
		assert.Equal(t, "s-1", usr.ID)
		assert.Equal(t, ThemeLight, st.Theme())
	})

	t.Run("malformed session data fails closed to AUTH", func(t *testing.T) {
		store := memstore.New()
		store.SetRaw(core.KeySession, []byte("{not json"))

		st := New(store)
		assert.Equal(t, ViewAuth, st.View())
		_, ok := st.Session()
		assert.False(t, ok)
	})

	t.Run("unknown theme value falls back to dark", func(t *testing.T) {
		store := memstore.New()
		assert.NoError(t, store.Save(core.KeyTheme, "sepia"))
		assert.Equal(t, ThemeDark, New(store).Theme())
	})
}

func TestNewForUser(t *testing.T) {
	t.Run("a stranger's persisted session is never adopted", func(t *testing.T) {
		store := memstore.New()
		other := student()
		other.ID = "t-9"
		other.Role = user.RoleTeacher
		assert.NoError(t, store.Save(core.KeySession, other))

		st := NewForUser(store, student(), nil)
		usr, ok := st.Session()
		assert.True(t, ok)
		assert.Equal(t, "s-1", usr.ID)
		assert.Equal(t, ErrStaffOnly, st.NavigateTo(ViewAdminPanel))
	})

	t.Run("two users keep independent sessions and themes", func(t *testing.T) {
		store := memstore.New()
		tch := student()
		tch.ID = "t-1"
		tch.Role = user.RoleTeacher

		stu := NewForUser(store, student(), nil)
		tchSt := NewForUser(store, tch, nil)

		tchSt.ToggleTheme()
		assert.Equal(t, ThemeDark, stu.Theme())

		stu.SignOut()
		restored := NewForUser(store, tch, nil)
		usr, ok := restored.Session()
		assert.True(t, ok, "one user's sign-out never clears another's session")
		assert.Equal(t, "t-1", usr.ID)
		assert.Equal(t, ViewDashboard, restored.View())
	})

	t.Run("the same user resumes their session", func(t *testing.T) {
		store := memstore.New()
		NewForUser(store, student(), nil)
		st := NewForUser(store, student(), nil)
		assert.Equal(t, ViewDashboard, st.View())
	})
}

func TestState_NavigateTo(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		st := New(memstore.New())
		assert.Equal(t, ErrNotSignedIn, st.NavigateTo(ViewDashboard))
		assert.NoError(t, st.NavigateTo(ViewForgotPassword), "password recovery is reachable without a session")
		assert.NoError(t, st.NavigateTo(ViewAuth))
	})

	t.Run("unknown view", func(t *testing.T) {
		st := New(memstore.New())
		assert.Equal(t, ErrUnknownView, st.NavigateTo(View("SETTINGS")))
	})

	t.Run("admin panel is staff only", func(t *testing.T) {
		st := New(memstore.New())
		st.SignIn(student())
		assert.Equal(t, ErrStaffOnly, st.NavigateTo(ViewAdminPanel))

		tch := student()
		tch.Role = user.RoleTeacher
		st.SignIn(tch)
		assert.NoError(t, st.NavigateTo(ViewAdminPanel))
	})

	t.Run("navigation bumps the epoch", func(t *testing.T) {
		st := New(memstore.New())
		st.SignIn(student())
		epoch := st.Epoch()
		assert.True(t, st.StillCurrent(epoch))
		assert.NoError(t, st.NavigateTo(ViewLessons))
		assert.False(t, st.StillCurrent(epoch), "a stale async completion must detect the navigation")
	})
}

func TestState_SignInSignOut(t *testing.T) {
	store := memstore.New()
	st := New(store)

	st.SignIn(student())
	assert.Equal(t, ViewDashboard, st.View())

	var persisted user.User
	ok, err := store.Load(core.KeySession, &persisted)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s-1", persisted.ID)

	st.SignOut()
	assert.Equal(t, ViewAuth, st.View())
	ok, err = store.Load(core.KeySession, &persisted)
	assert.NoError(t, err)
	assert.False(t, ok, "logout clears the persisted session")
}

func TestState_RefreshSession(t *testing.T) {
	store := memstore.New()
	st := New(store)
	st.SignIn(student())

	updated := student()
	updated.Nickname = "JD"
	st.RefreshSession(updated)

	usr, _ := st.Session()
	assert.Equal(t, "JD", usr.Nickname)

	stranger := student()
	stranger.ID = "s-9"
	stranger.Nickname = "nope"
	st.RefreshSession(stranger)
	usr, _ = st.Session()
	assert.Equal(t, "JD", usr.Nickname, "a different user's profile never lands on this session")
}

func TestState_ToggleTheme(t *testing.T) {
	store := memstore.New()
	st := New(store)

	assert.Equal(t, ThemeLight, st.ToggleTheme())
	assert.Equal(t, ThemeDark, st.ToggleTheme())
	assert.Equal(t, ThemeLight, st.ToggleTheme())

	var persisted string
	ok, _ := store.Load(core.KeyTheme, &persisted)
	assert.True(t, ok)
	assert.Equal(t, ThemeLight, persisted)

	// the preference survives a restart
	assert.Equal(t, ThemeLight, New(store).Theme())
}

type logRecorder struct {
	core.NopLogger
	errs []string
}

func (l *logRecorder) Error(msg string, _ ...interface{}) { l.errs = append(l.errs, msg) }

func TestState_persistFailuresAreLogged(t *testing.T) {
	store := memstore.New()
	store.FailSaves = true
	logger := &logRecorder{}

	st := NewForUser(store, student(), logger)
	assert.NotEmpty(t, logger.errs, "the failed session write is reported")

	n := len(logger.errs)
	st.ToggleTheme()
	assert.Greater(t, len(logger.errs), n)
	assert.Equal(t, ThemeLight, st.Theme(), "the in-memory state still advances")
}

func TestState_Busy(t *testing.T) {
	st := New(memstore.New())
	assert.False(t, st.Busy())
	st.SetBusy(true)
	assert.True(t, st.Busy())
	st.SetBusy(false)
	assert.False(t, st.Busy())

	t.Run("navigation is blocked while busy", func(t *testing.T) {
		st.SignIn(student())
		st.SetBusy(true)
		assert.Equal(t, ErrBusy, st.NavigateTo(ViewLessons))
		st.SetBusy(false)
		assert.NoError(t, st.NavigateTo(ViewLessons))
	})
}

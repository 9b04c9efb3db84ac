// Package app holds the explicit application-state container: the current
// view, the session user, the theme and the coarse busy flag, with
// subscription notifications for interested screens.
package app

import (
	"errors"
	"sync"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// View names the screens of the application.
type View string

const (
	ViewAuth           View = "AUTH"
	ViewDashboard      View = "DASHBOARD"
	ViewExam           View = "EXAM"
	ViewExamPreview    View = "EXAM_PREVIEW"
	ViewResult         View = "RESULT"
	ViewCommunity      View = "COMMUNITY"
	ViewLessons        View = "LESSONS"
	ViewLessonDetail   View = "LESSON_DETAIL"
	ViewContact        View = "CONTACT"
	ViewAdminPanel     View = "ADMIN_PANEL"
	ViewProfile        View = "PROFILE"
	ViewForgotPassword View = "FORGOT_PASSWORD"
	ViewGameSnake      View = "GAME_SNAKE"
	ViewLessonPreview  View = "LESSON_PREVIEW"
)

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var knownViews = map[View]bool{
	ViewAuth: true, ViewDashboard: true, ViewExam: true, ViewExamPreview: true,
	ViewResult: true, ViewCommunity: true, ViewLessons: true, ViewLessonDetail: true,
	ViewContact: true, ViewAdminPanel: true, ViewProfile: true, ViewForgotPassword: true,
	ViewGameSnake: true, ViewLessonPreview: true,
}

var (
	ErrUnknownView = errors.New("unknown view")
	ErrNotSignedIn = errors.New("not signed in")
	ErrStaffOnly   = errors.New("admin panel is restricted to teachers")
	ErrBusy        = errors.New("a request is already being processed")
)

type (
	// Event notifies subscribers of a state change.
	Event struct {
		View    View
		Session *user.User
		Theme   string
		Busy    bool
	}

	State struct {
		mu          sync.RWMutex
		store       core.Store
		logger      core.Logger
		sessionKey  string
		themeKey    string
		view        View
		session     *user.User
		theme       string
		busy        bool
		epoch       int // bumped on navigation; stale async completions check it
		subscribers []func(Event)
	}
)

// New restores the persisted session and theme. The initial view is
// DASHBOARD iff a valid session was persisted; malformed session data fails
// closed to AUTH. Screens outside AUTH/FORGOT_PASSWORD always require a
// session, so a missing one can never leak past login.
func New(store core.Store) *State {
	return newState(store, nil, core.KeySession, core.KeyTheme)
}

// NewForUser builds the state container for one authenticated user. Session
// and theme are persisted under keys suffixed with the user ID, so concurrent
// users never read or clear each other's session. A persisted session
// belonging to a different user is discarded and usr signed in instead.
func NewForUser(store core.Store, usr user.User, logger core.Logger) *State {
	st := newState(store, logger, core.KeySession+":"+usr.ID, core.KeyTheme+":"+usr.ID)
	if st.session == nil || st.session.ID != usr.ID {
		st.SignIn(usr)
	}
	return st
}

func newState(store core.Store, logger core.Logger, sessionKey, themeKey string) *State {
	if logger == nil {
		logger = core.NopLogger{}
	}
	st := &State{
		store:      store,
		logger:     logger,
		sessionKey: sessionKey,
		themeKey:   themeKey,
		view:       ViewAuth,
		theme:      ThemeDark,
	}

	var theme string
	if ok, err := store.Load(themeKey, &theme); err == nil && ok {
		if theme == ThemeLight || theme == ThemeDark {
			st.theme = theme
		}
	}

	var usr user.User
	if ok, err := store.Load(sessionKey, &usr); err == nil && ok && usr.ID != "" {
		st.session = &usr
		st.view = ViewDashboard
	}
	return st
}

// saveLocked persists one key; a failing store never blocks the in-memory
// transition, it only gets logged. Caller holds the lock.
func (st *State) saveLocked(key string, value interface{}) {
	if err := st.store.Save(key, value); err != nil {
		st.logger.Error("persisting "+key, err)
	}
}

// Subscribe registers a callback fired after every state change.
func (st *State) Subscribe(fn func(Event)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subscribers = append(st.subscribers, fn)
}

// notify is called with the lock held; callbacks run outside it.
func (st *State) notifyLocked() {
	ev := Event{View: st.view, Session: st.session, Theme: st.theme, Busy: st.busy}
	subs := make([]func(Event), len(st.subscribers))
	copy(subs, st.subscribers)
	go func() {
		for _, fn := range subs {
			fn(ev)
		}
	}()
}

// NavigateTo transitions to the target view. All transitions are triggered
// by explicit user actions or flow completions; the only automatic one, the
// countdown-driven EXAM→RESULT, also lands here. Navigation bumps the epoch
// so that async completions started on a previous screen can detect they
// are stale. Navigation is refused while a long-running call is in flight.
func (st *State) NavigateTo(target View) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !knownViews[target] {
		return ErrUnknownView
	}
	if st.busy {
		return ErrBusy
	}
	if st.session == nil && target != ViewAuth && target != ViewForgotPassword {
		return ErrNotSignedIn
	}
	if target == ViewAdminPanel && (st.session == nil || !st.session.IsStaff()) {
		return ErrStaffOnly
	}

	st.view = target
	st.epoch++
	st.notifyLocked()
	return nil
}

func (st *State) View() View {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.view
}

// Epoch identifies the current navigation generation.
func (st *State) Epoch() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.epoch
}

// StillCurrent reports whether an async completion begun at epoch may apply.
func (st *State) StillCurrent(epoch int) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.epoch == epoch
}

// SignIn establishes the session, persists it and lands on the dashboard.
func (st *State) SignIn(usr user.User) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.session = &usr
	st.saveLocked(st.sessionKey, usr)
	st.view = ViewDashboard
	st.epoch++
	st.notifyLocked()
}

// RefreshSession updates the persisted session after a profile save.
func (st *State) RefreshSession(usr user.User) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.session == nil || st.session.ID != usr.ID {
		return
	}
	st.session = &usr
	st.saveLocked(st.sessionKey, usr)
	st.notifyLocked()
}

// SignOut clears the session and returns to AUTH.
func (st *State) SignOut() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.session = nil
	if err := st.store.Delete(st.sessionKey); err != nil {
		st.logger.Error("clearing "+st.sessionKey, err)
	}
	st.view = ViewAuth
	st.epoch++
	st.notifyLocked()
}

// Session returns a copy of the signed-in user, if any.
func (st *State) Session() (user.User, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.session == nil {
		return user.User{}, false
	}
	return *st.session, true
}

func (st *State) Theme() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.theme
}

// ToggleTheme flips dark/light and persists the preference.
func (st *State) ToggleTheme() string {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.theme == ThemeDark {
		st.theme = ThemeLight
	} else {
		st.theme = ThemeDark
	}
	st.saveLocked(st.themeKey, st.theme)
	st.notifyLocked()
	return st.theme
}

// SetBusy flips the coarse global busy indicator used while a collaborator
// request is in flight. It deliberately blocks the whole UI, not a single
// operation.
func (st *State) SetBusy(busy bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.busy = busy
	st.notifyLocked()
}

func (st *State) Busy() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.busy
}

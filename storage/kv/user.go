// Package kvrepos implements the domain repositories on top of a core.Store.
// Each repository loads its key once at construction (malformed data fails
// closed to empty) and writes the full serialized form back synchronously in
// the same step as every in-memory mutation.
package kvrepos

import (
	"sort"
	"sync"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// userRecord is the persisted shape of a User: the public fields plus the
// password hash, which is json-hidden on the model itself.
type userRecord struct {
	user.User
	PasswordHash []byte `json:"password_hash,omitempty"`
}

type userRepository struct {
	mu    sync.RWMutex
	store core.Store
	users map[string]user.User
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(store core.Store) *userRepository {
	repo := &userRepository{
		store: store,
		users: make(map[string]user.User),
	}

	var records []userRecord
	if ok, err := store.Load(core.KeyUsers, &records); err == nil && ok {
		for _, rec := range records {
			usr := rec.User
			usr.PasswordHash = rec.PasswordHash
			repo.users[usr.ID] = usr
		}
	}
	return repo
}

// persist serializes the full directory under the users key. Callers hold the
// write lock.
func (repo *userRepository) persist() error {
	records := make([]userRecord, 0, len(repo.users))
	for _, usr := range repo.users {
		records = append(records, userRecord{User: usr, PasswordHash: usr.PasswordHash})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	return repo.store.Save(core.KeyUsers, records)
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.users))
	for _, usr := range repo.users {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, usr := range repo.users {
		if usr.Email != email {
			continue
		}
		excluded := false
		for _, excl := range excludedUsers {
			if excl.ID == usr.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.users[usr.ID] = usr
	if err := repo.persist(); err != nil {
		delete(repo.users, usr.ID)
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if usr, ok := repo.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, usr := range repo.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) DeleteUser(id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	prev, ok := repo.users[id]
	if !ok {
		return user.ErrNotFound
	}
	delete(repo.users, id)
	if err := repo.persist(); err != nil {
		repo.users[id] = prev
		return err
	}
	return nil
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	prev, ok := repo.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.users[usr.ID] = usr
	if err := repo.persist(); err != nil {
		repo.users[usr.ID] = prev
		return user.User{}, err
	}
	return usr, nil
}

package fakeuserrepo

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
	"github.com/jrsteele09/go-oauth-simulator/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users map[string]*users.User // username to user
	lock  sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.users[user.Username] = user
	return nil
}

func (ur *FakeUserRepo) Get(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[username]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUserNotFound, "username %q", username)
	}
	return user, nil
}

func (ur *FakeUserRepo) List() ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.User, 0, len(ur.users))
	for _, u := range ur.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Username < list[j].Username
	})
	return list, nil
}

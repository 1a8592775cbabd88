// Package credentials holds the registered users and clients the simulated
// servers authenticate against. The store is populated once from fixtures and
// is read-only afterwards.
package credentials

import (
	"github.com/jrsteele09/go-oauth-simulator/clients"
	fakeclientrepo "github.com/jrsteele09/go-oauth-simulator/clients/fakerepo"
	"github.com/jrsteele09/go-oauth-simulator/users"
	fakeuserrepo "github.com/jrsteele09/go-oauth-simulator/users/repofake"
	"github.com/pkg/errors"
)

type Store struct {
	Users   users.UserRepo
	Clients clients.Repo
}

// New builds a Store holding exactly the given fixtures.
func New(f *Fixtures) (*Store, error) {
	if f == nil {
		return nil, errors.New("[credentials.New] fixtures are required")
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "[credentials.New] invalid fixtures")
	}

	s := &Store{
		Users:   fakeuserrepo.NewFakeUserRepo(),
		Clients: fakeclientrepo.NewFakeClientRepo(),
	}
	for i := range f.Users {
		u := f.Users[i]
		if err := s.Users.Upsert(&u); err != nil {
			return nil, errors.Wrap(err, "[credentials.New] Users.Upsert")
		}
	}
	for i := range f.Clients {
		c := f.Clients[i]
		if err := s.Clients.Upsert(&c); err != nil {
			return nil, errors.Wrap(err, "[credentials.New] Clients.Upsert")
		}
	}
	return s, nil
}

// NewDefault builds a Store holding the built-in alice / toy-client fixtures.
func NewDefault() *Store {
	s, err := New(DefaultFixtures())
	if err != nil {
		panic(err) // built-in fixtures always validate
	}
	return s
}

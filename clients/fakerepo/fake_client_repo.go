package fakeclientrepo

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth-simulator/clients"
	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
)

var _ clients.Repo = (*FakeClientRepo)(nil)

type FakeClientRepo struct {
	clients map[string]*clients.Client
	lock    sync.RWMutex
}

func NewFakeClientRepo() clients.Repo {
	return &FakeClientRepo{
		clients: make(map[string]*clients.Client),
	}
}

func (r *FakeClientRepo) Upsert(clientData *clients.Client) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.clients[clientData.ID] = clientData
	return nil
}

func (r *FakeClientRepo) Get(clientID string) (*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	client, ok := r.clients[clientID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrClientNotFound, "client %q", clientID)
	}
	return client, nil
}

func (r *FakeClientRepo) List() ([]*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*clients.Client, 0, len(r.clients))
	for _, v := range r.clients {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

package token

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
)

// Ledger holds every issued code and token. Expired entries are never purged
// here; expiry is judged lazily by whoever reads an entry. Only Clear removes
// entries in bulk.
type Ledger struct {
	authCodes     map[string]*AuthorizationCode
	accessTokens  map[string]*AccessToken
	refreshTokens map[string]*RefreshToken
	lock          sync.RWMutex
}

// Stats counts ledger entries, expired ones included.
type Stats struct {
	OutstandingAuthCodes int `json:"outstandingAuthCodes"`
	IssuedAccessTokens   int `json:"issuedAccessTokens"`
	IssuedRefreshTokens  int `json:"issuedRefreshTokens"`
}

func NewLedger() *Ledger {
	return &Ledger{
		authCodes:     make(map[string]*AuthorizationCode),
		accessTokens:  make(map[string]*AccessToken),
		refreshTokens: make(map[string]*RefreshToken),
	}
}

func (l *Ledger) SaveCode(code *AuthorizationCode) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.authCodes[code.Code] = code
}

// GetCode returns a copy of the code entry.
func (l *Ledger) GetCode(code string) (*AuthorizationCode, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	c, ok := l.authCodes[code]
	if !ok {
		return nil, errors.ErrCodeNotFound
	}
	cp := *c
	return &cp, nil
}

// RedeemCode looks up code and runs check against it. If check passes the
// code is deleted before the lock is released, so no two redemptions of the
// same code can both succeed. If check fails the code stays in the ledger.
func (l *Ledger) RedeemCode(code string, check func(*AuthorizationCode) error) (*AuthorizationCode, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	c, ok := l.authCodes[code]
	if !ok {
		return nil, errors.ErrCodeNotFound
	}
	cp := *c
	if check != nil {
		if err := check(&cp); err != nil {
			return nil, err
		}
	}
	delete(l.authCodes, code)
	return &cp, nil
}

func (l *Ledger) SaveAccessToken(t *AccessToken) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.accessTokens[t.Token] = t
}

// GetAccessToken returns a copy of the entry, expired or not.
func (l *Ledger) GetAccessToken(token string) (*AccessToken, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	t, ok := l.accessTokens[token]
	if !ok {
		return nil, errors.ErrAccessTokenNotFound
	}
	cp := *t
	return &cp, nil
}

// ListAccessTokens returns copies of every access token entry ordered by expiry.
func (l *Ledger) ListAccessTokens() []*AccessToken {
	l.lock.RLock()
	defer l.lock.RUnlock()
	list := make([]*AccessToken, 0, len(l.accessTokens))
	for _, t := range l.accessTokens {
		cp := *t
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ExpiresAt.Before(list[j].ExpiresAt)
	})
	return list
}

func (l *Ledger) SaveRefreshToken(t *RefreshToken) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.refreshTokens[t.Token] = t
}

func (l *Ledger) GetRefreshToken(token string) (*RefreshToken, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	t, ok := l.refreshTokens[token]
	if !ok {
		return nil, errors.ErrRefreshTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (l *Ledger) Stats() Stats {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return Stats{
		OutstandingAuthCodes: len(l.authCodes),
		IssuedAccessTokens:   len(l.accessTokens),
		IssuedRefreshTokens:  len(l.refreshTokens),
	}
}

// Clear drops every code and token.
func (l *Ledger) Clear() {
	l.lock.Lock()
	defer l.lock.Unlock()
	clear(l.authCodes)
	clear(l.accessTokens)
	clear(l.refreshTokens)
}

package credentials

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-oauth-simulator/clients"
	"github.com/jrsteele09/go-oauth-simulator/users"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Built-in fixtures.
const (
	DefaultUsername    = "alice"
	DefaultPassword    = "wonderland"
	DefaultClientID    = "toy-client"
	DefaultSecret      = "toy-client-secret"
	DefaultRedirectURI = "https://client.example/callback"
)

// Fixtures is the on-disk shape of a credentials file:
//
//	users:
//	  - username: alice
//	    password: wonderland
//	    profile: {id: u_1001, name: Alice, plan: Free, favoriteColor: Blue}
//	clients:
//	  - id: toy-client
//	    secret: toy-client-secret
//	    redirectUri: https://client.example/callback
type Fixtures struct {
	Users   []users.User     `yaml:"users"`
	Clients []clients.Client `yaml:"clients"`
}

func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Users: []users.User{{
			Username: DefaultUsername,
			Password: DefaultPassword,
			Profile: users.Profile{
				ID:            "u_1001",
				Name:          "Alice",
				Plan:          "Free",
				FavoriteColor: "Blue",
			},
		}},
		Clients: []clients.Client{{
			ID:          DefaultClientID,
			Secret:      DefaultSecret,
			RedirectURI: DefaultRedirectURI,
		}},
	}
}

// LoadFixtures reads a YAML credentials file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadFixtures] read")
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "[LoadFixtures] parse %s", path)
	}
	return &f, nil
}

// Validate rejects fixtures that would leave the simulation without a party
// to play, or that register the same key twice.
func (f *Fixtures) Validate() error {
	if len(f.Users) == 0 {
		return errors.New("at least one user is required")
	}
	if len(f.Clients) == 0 {
		return errors.New("at least one client is required")
	}
	seenUsers := make(map[string]struct{}, len(f.Users))
	for _, u := range f.Users {
		if u.Username == "" {
			return errors.New("user with empty username")
		}
		if _, dup := seenUsers[u.Username]; dup {
			return fmt.Errorf("duplicate user %q", u.Username)
		}
		seenUsers[u.Username] = struct{}{}
	}
	seenClients := make(map[string]struct{}, len(f.Clients))
	for _, c := range f.Clients {
		if c.ID == "" || c.RedirectURI == "" {
			return fmt.Errorf("client %q needs an id and a redirectUri", c.ID)
		}
		if _, dup := seenClients[c.ID]; dup {
			return fmt.Errorf("duplicate client %q", c.ID)
		}
		seenClients[c.ID] = struct{}{}
	}
	return nil
}

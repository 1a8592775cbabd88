package users

// Profile is the protected resource the resource server hands out.
type Profile struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Plan          string `json:"plan" yaml:"plan"`
	FavoriteColor string `json:"favoriteColor" yaml:"favoriteColor"`
}

type User struct {
	Username string  `json:"username" yaml:"username"`
	Password string  `json:"-" yaml:"password"` // Plain text: the simulator does no password hashing
	Profile  Profile `json:"profile" yaml:"profile"`
}

// CheckPassword reports whether password matches the registered one.
func (u *User) CheckPassword(password string) bool {
	return u.Password == password
}

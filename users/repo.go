package users

type UserRepo interface {
	Upsert(user *User) error
	Get(username string) (*User, error)
	List() ([]*User, error)
}

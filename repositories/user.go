//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"cinechat/auth"
	"cinechat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// User is the repository-layer representation of an account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser persists a new account. Two keys are written in one
// transaction: the document under "user:id:" and an email index under
// "user:email:" used by login.
func (u *UserRepository) CreateUser(email, hashedPassword string) (string, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		indexKey := []byte("user:email:" + email)
		if _, err := txn.Get(indexKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(indexKey, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte("user:id:"+user.ID), data)
	})
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:email:" + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return User{}, errors.ErrNotFound
		}
		return User{}, err
	}

	return u.GetUserByID(id)
}

func (u *UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:id:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return User{}, errors.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// ResolveIdentity implements auth.IdentityResolver: it maps a verified
// subject claim to a live identity, or reports the subject as unknown when
// the account no longer exists.
func (u *UserRepository) ResolveIdentity(id string) (auth.Identity, error) {
	user, err := u.GetUserByID(id)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", errors.ErrUnknownSubject, err)
	}
	return auth.Identity{ID: user.ID, Handle: user.Email}, nil
}

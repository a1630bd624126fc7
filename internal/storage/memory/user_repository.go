package memory

import (
	"context"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type userRepositoryInMemory struct {
	store *Store
}

func (r *userRepositoryInMemory) Create(_ context.Context, user domain.User) (domain.User, error) {
	err := r.store.write(nil, func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, user.Email) {
				return domain.ErrEmailTaken
			}
		}
		user.ID = st.nextID()
		user.CreatedAt = time.Now().UTC()
		st.users[user.ID] = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *userRepositoryInMemory) GetByEmail(_ context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.store.read(nil, func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, email) {
				user = existing
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return user, err
}

func (r *userRepositoryInMemory) GetByID(_ context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := r.store.read(nil, func(st *state) error {
		existing, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		user = existing
		return nil
	})
	return user, err
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dbmodel/internal/model"
	"dbmodel/internal/store"
)

// UserRepository defines authentication user persistence operations.
type UserRepository interface {
	// Create stamps the create snapshot on user and stores it.
	Create(ctx context.Context, user *model.AuthenticationUser) (*model.AuthenticationUser, error)
	FindByEmail(ctx context.Context, email string) (*model.AuthenticationUser, error)
	FindBySub(ctx context.Context, sub string) (*model.AuthenticationUser, error)
	// Update merges the update snapshot of user into the stored document and
	// returns the result.
	Update(ctx context.Context, user *model.AuthenticationUser, opts model.UpdateOptions) (*model.AuthenticationUser, error)
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]*model.AuthenticationUser, error)
}

type userRepository struct {
	store store.Store
	users *model.Definition[*model.AuthenticationUser, model.AuthenticationUserParams]
}

// NewUserRepository builds a store-backed repository.
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{store: s, users: model.AuthenticationUsers}
}

func (r *userRepository) key(email string) model.Key {
	return model.Key{Type: r.users.Type, Partition: email}
}

// hydrate reads a stored body. Defaults are off so stored data is never
// topped up.
func (r *userRepository) hydrate(raw json.RawMessage) (*model.AuthenticationUser, error) {
	return r.users.FromJSONString(raw, model.WithDefaults(false))
}

func (r *userRepository) Create(ctx context.Context, user *model.AuthenticationUser) (*model.AuthenticationUser, error) {
	user = model.CreateEntry(user, model.CreateOptions{})
	doc, err := store.NewDocument(r.users, user)
	if err != nil {
		return nil, err
	}
	if err := r.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.AuthenticationUser, error) {
	raw, err := r.store.Get(ctx, r.key(email))
	if err != nil {
		return nil, err
	}
	return r.hydrate(raw)
}

func (r *userRepository) FindBySub(ctx context.Context, sub string) (*model.AuthenticationUser, error) {
	raw, err := r.store.Lookup(ctx, r.users.Type, model.FieldSub, sub)
	if err != nil {
		return nil, err
	}
	return r.hydrate(raw)
}

func (r *userRepository) Update(ctx context.Context, user *model.AuthenticationUser, opts model.UpdateOptions) (*model.AuthenticationUser, error) {
	// the key must be read before the snapshot clears non-whitelisted fields
	key, err := r.users.KeyOf(user)
	if err != nil {
		return nil, err
	}
	entry := model.UpdateEntry(user, opts)
	merged, err := r.store.Merge(ctx, key, entry, r.users.IndexesOf(user))
	if err != nil {
		return nil, err
	}
	return r.hydrate(merged)
}

func (r *userRepository) Delete(ctx context.Context, email string) error {
	return r.store.Delete(ctx, r.key(email))
}

func (r *userRepository) List(ctx context.Context) ([]*model.AuthenticationUser, error) {
	docs, err := r.store.List(ctx, r.users.Type)
	if err != nil {
		return nil, err
	}
	users := make([]*model.AuthenticationUser, 0, len(docs))
	for i, raw := range docs {
		u, err := r.hydrate(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		users = append(users, u)
	}
	return users, nil
}

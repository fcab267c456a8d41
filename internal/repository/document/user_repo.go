package document

import (
	"context"
	"errors"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/docstore"
)

type userRepo struct {
	gw domain.DocumentGateway
}

func NewUserRepository(gw domain.DocumentGateway) domain.UserRepository {
	return &userRepo{gw: gw}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	_, err := r.gw.Create(ctx, domain.CollectionUsers, domain.Document{
		"id":        user.ID,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": r.gw.ServerTimestamp(),
		"updatedAt": r.gw.ServerTimestamp(),
	})
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.gw.Get(ctx, domain.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var user domain.User
	if err := docstore.Decode(doc, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.gw.Update(ctx, domain.CollectionUsers, user.ID, domain.Document{
		"email":     user.Email,
		"role":      user.Role,
		"updatedAt": r.gw.ServerTimestamp(),
	})
}

package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/repository"
	"profilehub/pkg/logger"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

// Create checks the unique fields and inserts inside one transaction.
func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.checkUnique(tx, user); err != nil {
			return err
		}
		return tx.Create(r.users().Doc(user.ID), user)
	})
	return translateTxError(err, nil)
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *firestoreUserRepository) GetByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	docs, err := r.users().Where("mobile", "==", mobile).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}

	var user entity.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *firestoreUserRepository) IsTaken(ctx context.Context, field, value, excludeID string) (bool, error) {
	docs, err := r.users().Where(field, "==", value).Limit(2).Documents(ctx).GetAll()
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if doc.Ref.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Update writes user only while the stored version equals expectedVersion.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User, expectedVersion int64) error {
	next := *user
	next.Version = expectedVersion + 1
	ref := r.users().Doc(user.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return repository.ErrNotFound
			}
			return err
		}

		var stored entity.User
		if err := doc.DataTo(&stored); err != nil {
			return err
		}
		if stored.Version != expectedVersion {
			return repository.ErrVersionConflict
		}

		if err := r.checkUnique(tx, &next); err != nil {
			return err
		}

		return tx.Set(ref, &next)
	}, firestore.MaxAttempts(1))
	if err != nil {
		return translateTxError(err, repository.ErrVersionConflict)
	}

	user.Version = next.Version
	return nil
}

// translateTxError maps gRPC codes surfacing at commit to repository errors.
// A transaction that lost to a concurrent writer fails with Aborted, which
// becomes onAborted when it is non-nil.
func translateTxError(err, onAborted error) error {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return repository.ErrDuplicate
	case codes.Aborted:
		if onAborted != nil {
			return onAborted
		}
	}
	return err
}

// checkUnique must run before any write in tx.
func (r *firestoreUserRepository) checkUnique(tx *firestore.Transaction, user *entity.User) error {
	unique := map[string]string{
		"mobile":          user.Mobile,
		"email":           user.Email,
		"secondaryMobile": user.SecondaryMobile,
	}
	for field, value := range unique {
		if value == "" {
			continue
		}
		docs, err := tx.Documents(r.users().Where(field, "==", value).Limit(2)).GetAll()
		if err != nil {
			return fmt.Errorf("check %s: %w", field, err)
		}
		for _, doc := range docs {
			if doc.Ref.ID != user.ID {
				logger.Debug("User %s: %s already held by %s", user.ID, field, doc.Ref.ID)
				return repository.ErrDuplicate
			}
		}
	}
	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	ref := r.users().Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return repository.ErrNotFound
			}
			return err
		}
		return tx.Delete(ref)
	})
}

func (r *firestoreUserRepository) List(ctx context.Context, filter repository.UserFilter, opts repository.ListOptions) ([]*entity.User, int64, error) {
	query := r.users().Query
	if filter.Name != "" {
		query = query.Where("name", "==", filter.Name)
	}
	if filter.Role != "" {
		query = query.Where("role", "==", filter.Role)
	}

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	for _, s := range opts.Sort {
		field, ok := repository.SortableFields[s.Field]
		if !ok {
			continue
		}
		dir := firestore.Asc
		if s.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(field, dir)
	}
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, err
	}

	users := make([]*entity.User, 0, len(docs))
	for _, doc := range docs {
		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, 0, err
		}
		users = append(users, &user)
	}

	return users, total, nil
}

func (r *firestoreUserRepository) Ping(ctx context.Context) error {
	_, err := r.users().Limit(1).Documents(ctx).GetAll()
	return err
}

func count(ctx context.Context, query firestore.Query) (int64, error) {
	res, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", res["total"])
	}
	return v.GetIntegerValue(), nil
}

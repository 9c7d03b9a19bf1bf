package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

func counterReply(seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{
		Key:   "value",
		Value: bson.D{{Key: "_id", Value: userSequence}, {Key: "seq", Value: seq}},
	})
}

func newUser() *domain.User {
	return &domain.User{
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$12$hash",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUserRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns the next sequence value", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(counterReply(42), mtest.CreateSuccessResponse())

		created, err := repo.Create(context.Background(), newUser())
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if created.ID != 42 {
			mt.Fatalf("expected id 42, got %d", created.ID)
		}
		if created.Email != "alice@x.com" || created.Role != domain.RoleCustomer {
			mt.Fatalf("unexpected user: %+v", created)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			counterReply(43),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error collection: bellybox.users index: uniq_email",
			}),
		)

		_, err := repo.Create(context.Background(), newUser())
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			mt.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	mt.Run("sequence failure", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "counter unavailable",
		}))

		_, err := repo.Create(context.Background(), newUser())
		if err == nil || errors.Is(err, domain.ErrDuplicateEmail) {
			mt.Fatalf("expected a wrapped store error, got %v", err)
		}
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(7)},
			{Key: "username", Value: "dan"},
			{Key: "email", Value: "dan@x.com"},
			{Key: "password", Value: "$2a$12$hash"},
			{Key: "role", Value: "delivery"},
			{Key: "created_at", Value: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		}))

		user, err := repo.FindByEmail(context.Background(), "dan@x.com")
		if err != nil {
			mt.Fatalf("FindByEmail: %v", err)
		}
		if user.ID != 7 || user.Role != domain.RoleDelivery {
			mt.Fatalf("unexpected user: %+v", user)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.FindByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/membership-site/internal/core/domain"
)

const hashFixture = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func usersNS(mt *mtest.T) string {
	return mt.DB.Name() + "." + collectionUsers
}

func userDoc(id primitive.ObjectID, name, email, role string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: email},
		{Key: "password", Value: hashFixture},
		{Key: "user_type", Value: role},
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc(id, "Ann Lee", "ann@example.com", "admin")))

		repo := NewUserRepository(mt.DB)
		u, err := repo.FindByEmail(context.Background(), "ANN@example.com")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if u.ID != id.Hex() || u.Email != "ann@example.com" || u.Role != domain.RoleAdmin {
			mt.Fatalf("unexpected user: %+v", u)
		}
		if u.PasswordHash != hashFixture {
			mt.Fatalf("password hash not mapped: %q", u.PasswordHash)
		}
	})

	mt.Run("unknown role falls back to user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "Bob", "bob@example.com", "")))

		u, err := NewUserRepository(mt.DB).FindByEmail(context.Background(), "bob@example.com")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if u.Role != domain.RoleUser {
			mt.Fatalf("expected role user, got %q", u.Role)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).FindByEmail(context.Background(), "ghost@example.com")
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "boom"}))

		_, err := NewUserRepository(mt.DB).FindByEmail(context.Background(), "ann@example.com")
		if err == nil || errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected a wrapped driver error, got %v", err)
		}
	})
}

func TestUserRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewUserRepository(mt.DB)
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return fixed }

		created, err := repo.Insert(context.Background(), &domain.User{
			Name: "Ann Lee", Email: " Ann@Example.com", PasswordHash: hashFixture, Role: domain.RoleUser,
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if created.ID == "" {
			mt.Fatal("expected generated id")
		}
		if created.Email != "ann@example.com" {
			mt.Fatalf("email not normalized: %q", created.Email)
		}
		if !created.CreatedAt.Equal(fixed) || !created.UpdatedAt.Equal(fixed) {
			mt.Fatalf("timestamps not set: %+v", created)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		_, err := NewUserRepository(mt.DB).Insert(context.Background(), &domain.User{Email: "ann@example.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})
}

func TestUserRepository_Save(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replaces existing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		u := &domain.User{ID: "abc", Email: "Ann@example.com", PasswordHash: hashFixture, Role: domain.RoleAdmin}
		if err := NewUserRepository(mt.DB).Save(context.Background(), u); err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if u.ID != "abc" {
			mt.Fatalf("existing id must be kept, got %q", u.ID)
		}
		if u.Email != "ann@example.com" {
			mt.Fatalf("email not normalized: %q", u.Email)
		}
		if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
			mt.Fatal("timestamps not set")
		}
	})

	mt.Run("write failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		if err := NewUserRepository(mt.DB).Save(context.Background(), &domain.User{Email: "a@b.co"}); err == nil {
			mt.Fatal("expected error")
		}
	})
}

func TestUserRepository_UpdateRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := NewUserRepository(mt.DB).UpdateRole(context.Background(), "ann@example.com", domain.RoleAdmin); err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("no such user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewUserRepository(mt.DB).UpdateRole(context.Background(), "ghost@example.com", domain.RoleAdmin)
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sets only the hash", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := NewUserRepository(mt.DB).UpdatePasswordHash(context.Background(), "Ann@Example.com", hashFixture); err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "update" {
			mt.Fatalf("expected an update command, got %+v", evt)
		}
		set := evt.Command.Lookup("updates", "0", "u", "$set").Document()
		if got := set.Lookup("password").StringValue(); got != hashFixture {
			mt.Fatalf("unexpected password in update: %q", got)
		}
		if _, err := set.LookupErr("user_type"); err == nil {
			mt.Fatal("the role must not be part of a hash update")
		}
	})

	mt.Run("no such user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewUserRepository(mt.DB).UpdatePasswordHash(context.Background(), "ghost@example.com", hashFixture)
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("all users", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "Ann Lee", "ann@example.com", "user"),
			userDoc(primitive.NewObjectID(), "Root", "root@example.com", "admin"),
		))

		users, err := NewUserRepository(mt.DB).List(context.Background())
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 2 {
			mt.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[1].Role != domain.RoleAdmin {
			mt.Errorf("expected second user to be admin, got %q", users[1].Role)
		}
	})
}

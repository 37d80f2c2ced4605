package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/user"
)

type userRepository struct {
	col *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{col: db.db.Collection(colUsers)}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excludedIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, usr.ID)
	}

	var usr user.User
	filter := bson.M{"username": username, "_id": bson.M{"$nin": excludedIDs}}
	if err := repo.col.FindOne(ctx, filter).Decode(&usr); err == nil {
		return user.ErrUsernameExists
	} else if err != mongo.ErrNoDocuments {
		return err
	}

	filter = bson.M{"email": email, "_id": bson.M{"$nin": excludedIDs}}
	if err := repo.col.FindOne(ctx, filter).Decode(&usr); err == nil {
		return user.ErrEmailExists
	} else if err != mongo.ErrNoDocuments {
		return err
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = core.NewID("USR")
	}
	if _, err := repo.col.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	cur, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var users []user.User
	if err = cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"username": username})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"email": email})
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": username},
	}})
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		return user.User{}, err
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		existing, err := repo.GetUserByUsernameOrEmail(ctx, usr.Username)
		switch err {
		case nil:
			usr.ID = existing.ID
		case user.ErrNotFound:
			return repo.CreateUser(ctx, usr)
		default:
			return user.User{}, err
		}
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := repo.col.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr, opts); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	_, err := repo.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (repo *userRepository) getOne(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.col.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

package users

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/dynamodb/services"
	"recipeshare.me/recipes/internal/dynamodb/token"
	"recipeshare.me/recipes/internal/exceptions"
)

// Site Wide Users
const PartitionKey = "Global:User"

type UserDynamoDBService struct {
	services.RepositoryDynamoDBService[data.UserDTO]
}

func NewUserService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.UserRepository {
	return &UserDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.UserDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "User",
		},
	}
}

func Key(userId string) services.Key {
	return services.Key{PK: PartitionKey, SK: userId}
}

func (us *UserDynamoDBService) GetUser(ctx context.Context, userId string) (data.UserDTO, error) {
	return us.Get(ctx, Key(userId), true)
}

// ensure creates an empty user document if none exists yet.
func (us *UserDynamoDBService) ensure(ctx context.Context, userId string) error {
	now := time.Now().UTC()
	_, err := us.Create(ctx, data.UserDTO{
		PK:         PartitionKey,
		SK:         userId,
		Activity:   []data.ActivityDTO{},
		CreateTime: now,
		UpdateTime: now,
	}, userId)
	if exceptions.IsConflict(err) {
		return nil
	}
	return err
}

func (us *UserDynamoDBService) PutProfile(ctx context.Context, userId string, input data.UserInputDTO) (data.UserDTO, error) {
	now := time.Now().UTC()
	update := expression.Set(expression.Name("updateTime"), expression.Value(now)).
		Set(expression.Name("createTime"), expression.IfNotExists(expression.Name("createTime"), expression.Value(now))).
		Set(expression.Name("activity"), expression.IfNotExists(expression.Name("activity"), expression.Value([]data.ActivityDTO{}))).
		Set(expression.Name("version"), expression.IfNotExists(expression.Name("version"), expression.Value(0)))
	if input.DisplayName != nil {
		update = update.Set(expression.Name("displayName"), expression.Value(input.DisplayName))
	}
	if input.PhotoURL != nil {
		update = update.Set(expression.Name("photoURL"), expression.Value(input.PhotoURL))
	}
	return us.Update(ctx, Key(userId), update, nil)
}

// UpdateActivity reads the log, applies mutate, and writes it back only if
// the version is unchanged.
func (us *UserDynamoDBService) UpdateActivity(ctx context.Context, userId string, mutate data.ActivityMutator) ([]data.ActivityDTO, error) {
	if err := us.ensure(ctx, userId); err != nil {
		return nil, err
	}
	user, err := us.GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	next := mutate(append([]data.ActivityDTO{}, user.Activity...))
	update := expression.Set(expression.Name("activity"), expression.Value(next)).
		Set(expression.Name("version"), expression.Value(user.Version+1)).
		Set(expression.Name("updateTime"), expression.Value(time.Now().UTC()))
	var condition expression.ConditionBuilder
	if user.Version == 0 {
		condition = expression.Name("version").AttributeNotExists().Or(expression.Name("version").Equal(expression.Value(0)))
	} else {
		condition = expression.Name("version").Equal(expression.Value(user.Version))
	}
	updated, err := us.Update(ctx, Key(userId), update, &condition)
	if services.IsConditionFailed(err) {
		return nil, exceptions.Conflict("user", userId)
	}
	if err != nil {
		return nil, err
	}
	return updated.Activity, nil
}

func (us *UserDynamoDBService) ToggleFavorite(ctx context.Context, userId string, recipeId string) (bool, error) {
	if err := us.ensure(ctx, userId); err != nil {
		return false, err
	}
	touch := func() expression.UpdateBuilder {
		return expression.Set(expression.Name("updateTime"), expression.Value(time.Now().UTC()))
	}
	_, present, err := us.ToggleMember(ctx, Key(userId), "favorites", recipeId, touch)
	return present, err
}

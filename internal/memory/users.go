package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
)

func (s *Store) GetUser(ctx context.Context, userId string) (data.UserDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.UserDTO{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userId]
	if !ok {
		return data.UserDTO{}, exceptions.NotFound("user", userId)
	}
	return user, nil
}

func (s *Store) PutProfile(ctx context.Context, userId string, input data.UserInputDTO) (data.UserDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.UserDTO{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.userOrNew(userId)
	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.PhotoURL != nil {
		user.PhotoURL = input.PhotoURL
	}
	user.UpdateTime = s.timestamp()
	s.users[userId] = user
	return user, nil
}

// userOrNew must be called with the write lock held.
func (s *Store) userOrNew(userId string) data.UserDTO {
	if user, ok := s.users[userId]; ok {
		return user
	}
	now := s.timestamp()
	return data.UserDTO{
		PK:         "Global:User",
		SK:         userId,
		Activity:   []data.ActivityDTO{},
		CreateTime: now,
		UpdateTime: now,
	}
}

func (s *Store) UpdateActivity(ctx context.Context, userId string, mutate data.ActivityMutator) ([]data.ActivityDTO, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.userOrNew(userId)
	current := append([]data.ActivityDTO{}, user.Activity...)
	user.Activity = mutate(current)
	user.Version++
	user.UpdateTime = s.timestamp()
	s.users[userId] = user
	return append([]data.ActivityDTO{}, user.Activity...), nil
}

func (s *Store) ToggleFavorite(ctx context.Context, userId string, recipeId string) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.userOrNew(userId)
	favorites, present := toggle(user.Favorites, recipeId)
	user.Favorites = favorites
	user.UpdateTime = s.timestamp()
	s.users[userId] = user
	return present, nil
}

func (s *Store) PostMessage(ctx context.Context, input data.ChatMessageInputDTO) (data.ChatMessageDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.ChatMessageDTO{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	message := data.ChatMessageDTO{
		PK:        "Global:Chat",
		SK:        uuid.Must(uuid.NewV7()).String(),
		Message:   input.Message,
		Sender:    input.Sender,
		Timestamp: s.timestamp(),
	}
	s.messages = append(s.messages, message)
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].SK < s.messages[j].SK
	})
	return message, nil
}

func (s *Store) RecentMessages(ctx context.Context, limit int) ([]data.ChatMessageDTO, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.messages) > limit {
		start = len(s.messages) - limit
	}
	return append([]data.ChatMessageDTO{}, s.messages[start:]...), nil
}

func (s *Store) MessagesAfter(ctx context.Context, afterId string, limit int) ([]data.ChatMessageDTO, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var messages []data.ChatMessageDTO
	for _, message := range s.messages {
		if message.SK <= afterId {
			continue
		}
		messages = append(messages, message)
		if limit > 0 && len(messages) == limit {
			break
		}
	}
	return messages, nil
}

package memory

import (
	"context"
	"sort"

	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
)

func (s *Store) GetRating(ctx context.Context, recipeId string, userId string) (data.RatingDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.RatingDTO{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rating, ok := s.ratings[recipeId][userId]
	if !ok {
		return data.RatingDTO{}, exceptions.NotFound("rating", recipeId+":"+userId)
	}
	return rating, nil
}

func (s *Store) SubmitRating(ctx context.Context, recipeId string, userId string, value int) (data.RatingResult, error) {
	if err := checkContext(ctx); err != nil {
		return data.RatingResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe, ok := s.recipes[recipeId]
	if !ok {
		return data.RatingResult{}, exceptions.NotFound("recipe", recipeId)
	}
	if existing, ok := s.ratings[recipeId][userId]; ok {
		return data.RatingResult{
			Rating:    existing.Rating,
			Created:   false,
			Aggregate: recipe.Aggregate(),
		}, nil
	}
	now := s.timestamp()
	aggregate := recipe.Aggregate().Fold(value)
	if s.ratings[recipeId] == nil {
		s.ratings[recipeId] = make(map[string]data.RatingDTO)
	}
	s.ratings[recipeId][userId] = data.RatingDTO{
		PK:         recipeId + ":Rating",
		SK:         userId,
		RecipeId:   recipeId,
		UserId:     userId,
		Rating:     value,
		CreateTime: now,
	}
	recipe.RatingSum = aggregate.Sum
	recipe.RatingsCount = aggregate.Count
	recipe.Rating = aggregate.Average
	recipe.Version++
	recipe.UpdateTime = now
	s.recipes[recipeId] = recipe
	return data.RatingResult{
		Rating:    value,
		Created:   true,
		Aggregate: aggregate,
	}, nil
}

func (s *Store) DeleteRatings(ctx context.Context, recipeId string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ratings, recipeId)
	return nil
}

func (s *Store) CreateComment(ctx context.Context, input data.CommentInputDTO) (data.CommentDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.CommentDTO{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timestamp()
	comment := data.CommentDTO{
		PK:         s.newId(),
		SK:         data.CommentKind,
		FirstIndex: input.RecipeId + ":" + data.CommentKind,
		RecipeId:   input.RecipeId,
		Content:    input.Content,
		Author:     input.Author,
		Rating:     input.Rating,
		Timestamp:  &now,
	}
	comment.FirstIndexSort = data.SortKey(comment.Timestamp, comment.PK)
	s.comments[comment.PK] = comment
	return comment, nil
}

func (s *Store) CreateReply(ctx context.Context, input data.ReplyInputDTO) (data.ReplyDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.ReplyDTO{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[input.CommentId]; !ok {
		return data.ReplyDTO{}, exceptions.NotFound("comment", input.CommentId)
	}
	now := s.timestamp()
	reply := data.ReplyDTO{
		PK:         s.newId(),
		SK:         data.ReplyKind,
		FirstIndex: input.CommentId + ":" + data.ReplyKind,
		CommentId:  input.CommentId,
		Content:    input.Content,
		Author:     input.Author,
		Timestamp:  &now,
	}
	reply.FirstIndexSort = data.SortKey(reply.Timestamp, reply.PK)
	s.replies[reply.PK] = reply
	return reply, nil
}

func (s *Store) GetComment(ctx context.Context, commentId string) (data.CommentDTO, error) {
	if err := checkContext(ctx); err != nil {
		return data.CommentDTO{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[commentId]
	if !ok {
		return data.CommentDTO{}, exceptions.NotFound("comment", commentId)
	}
	return comment, nil
}

func (s *Store) ListComments(ctx context.Context, recipeId string, params data.QueryParams) (data.QueryResults[data.CommentDTO], error) {
	if err := checkContext(ctx); err != nil {
		return data.QueryResults[data.CommentDTO]{}, err
	}
	s.mu.RLock()
	var comments []data.CommentDTO
	for _, comment := range s.comments {
		if comment.RecipeId == recipeId {
			comments = append(comments, comment)
		}
	}
	s.mu.RUnlock()
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].FirstIndexSort < comments[j].FirstIndexSort
	})
	return page(comments, params)
}

func (s *Store) ListReplies(ctx context.Context, commentId string, params data.QueryParams) (data.QueryResults[data.ReplyDTO], error) {
	if err := checkContext(ctx); err != nil {
		return data.QueryResults[data.ReplyDTO]{}, err
	}
	s.mu.RLock()
	var replies []data.ReplyDTO
	for _, reply := range s.replies {
		if reply.CommentId == commentId {
			replies = append(replies, reply)
		}
	}
	s.mu.RUnlock()
	sort.Slice(replies, func(i, j int) bool {
		return replies[i].FirstIndexSort < replies[j].FirstIndexSort
	})
	return page(replies, params)
}

func (s *Store) ToggleLike(ctx context.Context, id string, liker string) (data.LikeResult, error) {
	if err := checkContext(ctx); err != nil {
		return data.LikeResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment, ok := s.comments[id]; ok {
		likes, liked := toggle(comment.Likes, liker)
		comment.Likes = likes
		s.comments[id] = comment
		return data.LikeResult{Id: id, Liked: liked, Count: len(likes)}, nil
	}
	if reply, ok := s.replies[id]; ok {
		likes, liked := toggle(reply.Likes, liker)
		reply.Likes = likes
		s.replies[id] = reply
		return data.LikeResult{Id: id, Liked: liked, Count: len(likes)}, nil
	}
	return data.LikeResult{}, exceptions.NotFound("comment", id)
}

func (s *Store) DeleteComments(ctx context.Context, recipeId string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, comment := range s.comments {
		if comment.RecipeId != recipeId {
			continue
		}
		for replyId, reply := range s.replies {
			if reply.CommentId == id {
				delete(s.replies, replyId)
			}
		}
		delete(s.comments, id)
	}
	return nil
}

// toggle returns a fresh set with member flipped, and whether it is now present.
func toggle(set []string, member string) ([]string, bool) {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, existing := range set {
		if existing == member {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, member)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil, false
	}
	return out, !found
}

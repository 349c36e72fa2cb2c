package comments

import (
	"slices"
	"time"

	"recipeshare.me/recipes/internal/comments"
	"recipeshare.me/recipes/internal/data"
)

type CommentInput struct {
	Content string `json:"content"`
	Rating  *int   `json:"rating"`
}

type ReplyInput struct {
	Content string `json:"content"`
}

type Author struct {
	Id          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

func NewAuthor(author data.AuthorDTO) Author {
	return Author{
		Id:          author.Id,
		DisplayName: author.DisplayName,
		PhotoURL:    author.PhotoURL,
	}
}

type Reply struct {
	Id        string     `json:"replyId"`
	CommentId string     `json:"commentId"`
	Content   string     `json:"content"`
	Author    Author     `json:"author"`
	Likes     int        `json:"likes"`
	Liked     bool       `json:"liked"`
	Timestamp *time.Time `json:"timestamp"`
}

type Comment struct {
	Id        string     `json:"commentId"`
	RecipeId  string     `json:"recipeId"`
	Content   string     `json:"content"`
	Author    Author     `json:"author"`
	Rating    *int       `json:"rating,omitempty"`
	Likes     int        `json:"likes"`
	Liked     bool       `json:"liked"`
	Timestamp *time.Time `json:"timestamp"`
	Replies   []Reply    `json:"replies"`
}

// NewReply renders a reply for viewer, the caller's user id or empty.
func NewReply(viewer string) func(data.ReplyDTO) Reply {
	return func(reply data.ReplyDTO) Reply {
		return Reply{
			Id:        reply.Id(),
			CommentId: reply.CommentId,
			Content:   reply.Content,
			Author:    NewAuthor(reply.Author),
			Likes:     reply.LikeCount(),
			Liked:     viewer != "" && slices.Contains(reply.Likes, viewer),
			Timestamp: reply.Timestamp,
		}
	}
}

func NewComment(viewer string) func(data.CommentDTO) Comment {
	return func(comment data.CommentDTO) Comment {
		return Comment{
			Id:        comment.Id(),
			RecipeId:  comment.RecipeId,
			Content:   comment.Content,
			Author:    NewAuthor(comment.Author),
			Rating:    comment.Rating,
			Likes:     comment.LikeCount(),
			Liked:     viewer != "" && slices.Contains(comment.Likes, viewer),
			Timestamp: comment.Timestamp,
			Replies:   []Reply{},
		}
	}
}

func NewThread(viewer string) func(comments.Thread) Comment {
	return func(thread comments.Thread) Comment {
		comment := NewComment(viewer)(thread.CommentDTO)
		for _, reply := range thread.Replies {
			comment.Replies = append(comment.Replies, NewReply(viewer)(reply))
		}
		return comment
	}
}

type Like struct {
	Id    string `json:"id"`
	Liked bool   `json:"liked"`
	Likes int    `json:"likes"`
}

func NewLike(result data.LikeResult) Like {
	return Like{
		Id:    result.Id,
		Liked: result.Liked,
		Likes: result.Count,
	}
}

package users

import (
	"time"

	"recipeshare.me/recipes/internal/data"
)

type ProfileInput struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

func (p *ProfileInput) ToData() data.UserInputDTO {
	return data.UserInputDTO{
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
	}
}

type Profile struct {
	Id          string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	PhotoURL    *string   `json:"photoURL,omitempty"`
	Favorites   int       `json:"favorites"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
}

func NewProfile(user data.UserDTO) Profile {
	return Profile{
		Id:          user.Id(),
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Favorites:   len(user.Favorites),
		CreateTime:  user.CreateTime,
		UpdateTime:  user.UpdateTime,
	}
}

type Activity struct {
	RecipeId   string    `json:"recipeId"`
	RecipeName string    `json:"recipeName"`
	Date       time.Time `json:"date"`
}

func NewActivity(entry data.ActivityDTO) Activity {
	return Activity{
		RecipeId:   entry.RecipeId,
		RecipeName: entry.RecipeName,
		Date:       entry.Date,
	}
}

type Favorite struct {
	RecipeId string `json:"recipeId"`
	Favorite bool   `json:"favorite"`
}

package routes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/app"
	"recipeshare.me/recipes/internal/memory"
	"recipeshare.me/recipes/internal/metrics"
	"recipeshare.me/recipes/internal/routes"
	"recipeshare.me/recipes/internal/routes/chat"
	"recipeshare.me/recipes/internal/routes/comments"
	"recipeshare.me/recipes/internal/routes/filters"
	"recipeshare.me/recipes/internal/routes/recipes"
	"recipeshare.me/recipes/internal/routes/users"
	"recipeshare.me/recipes/internal/routes/util"
)

type LocalServer struct {
	Router      *routes.Router
	Username    string
	DisplayName string
}

func NewLocalServer(t *testing.T) *LocalServer {
	services := app.NewServices(app.MemoryRepositories(memory.NewStore()), zap.NewNop()).CascadeInline()
	return &LocalServer{
		Router:      services.NewRouter(zap.NewNop()),
		Username:    "nobody",
		DisplayName: "Nobody",
	}
}

func (ls *LocalServer) UpdateIdentity(username, displayName string) {
	ls.Username = username
	ls.DisplayName = displayName
}

func (ls *LocalServer) Request(t *testing.T, method string, path string, body []byte, out any, params map[string]string) events.APIGatewayV2HTTPResponse {
	request := events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		QueryStringParameters: params,
		Body:                  string(body),
	}
	request.RequestContext.HTTP.Method = method
	request.RequestContext.HTTP.Path = path
	request.RequestContext.HTTP.SourceIP = "127.0.0.1"
	if ls.Username != "" {
		request.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
			Lambda: map[string]interface{}{
				"sub":  ls.Username,
				"name": ls.DisplayName,
			},
		}
	}
	response := ls.Router.Invoke(request, context.TODO())
	if out != nil && response.Body != "" {
		if err := json.Unmarshal([]byte(response.Body), out); err != nil {
			t.Fatalf("Failed to deserialize payload for %s %s: %s", method, path, response.Body)
		}
	}
	return response
}

func (ls *LocalServer) Options(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, "OPTIONS", path, nil, nil, nil)
}

func (ls *LocalServer) Get(t *testing.T, out any, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, "GET", path, nil, out, nil)
}

func (ls *LocalServer) GetQuery(t *testing.T, out any, path string, params map[string]string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, "GET", path, nil, out, params)
}

func (ls *LocalServer) Post(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return ls.Request(t, "POST", path, payload, out, nil)
}

func (ls *LocalServer) Delete(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, "DELETE", path, nil, nil, nil)
}

func (ls *LocalServer) Put(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return ls.Request(t, "PUT", path, payload, out, nil)
}

func expectStatus(t *testing.T, response events.APIGatewayV2HTTPResponse, status int) {
	t.Helper()
	if response.StatusCode != status {
		t.Fatalf("Expected status %d, got %d: %s", status, response.StatusCode, response.Body)
	}
}

func createRecipe(t *testing.T, server *LocalServer, title string, category string) recipes.Recipe {
	t.Helper()
	var created recipes.Recipe
	response := server.Post(t, &created, "/recipes", &recipes.RecipeInput{
		Title:        aws.String(title),
		Category:     aws.String(category),
		Ingredients:  &[]string{"rice", "  ", "egg"},
		Instructions: &[]string{"Fry the rice", "Add the egg"},
	})
	expectStatus(t, response, 201)
	return created
}

func TestRouter(t *testing.T) {
	server := NewLocalServer(t)

	t.Run("RecipeWorkflow", func(t *testing.T) {
		server.UpdateIdentity("chef", "Chef")
		created := createRecipe(t, server, "Nasi Goreng", "Makan Malam")
		if created.AuthorId != "chef" {
			t.Fatalf("Expected the caller as author, got %s", created.AuthorId)
		}
		if len(created.Ingredients) != 2 {
			t.Fatalf("Expected blank ingredients dropped, got %v", created.Ingredients)
		}
		get := server.Get(t, nil, fmt.Sprintf("/recipes/%s", created.Id))
		expectStatus(t, get, 200)

		var results util.Page[recipes.Recipe]
		list := server.GetQuery(t, &results, "/recipes", map[string]string{"category": "Makan Malam"})
		expectStatus(t, list, 200)
		if len(results.Items) != 1 || results.Items[0].Id != created.Id {
			t.Fatalf("Expected the recipe by category, got %v", results.Items)
		}

		bad := server.GetQuery(t, nil, "/recipes", map[string]string{"category": "Brunch"})
		expectStatus(t, bad, 400)
		badLimit := server.GetQuery(t, nil, "/recipes", map[string]string{"limit": "many"})
		expectStatus(t, badLimit, 400)

		invalid := server.Post(t, nil, "/recipes", &recipes.RecipeInput{Category: aws.String("Camilan")})
		expectStatus(t, invalid, 400)

		server.UpdateIdentity("stranger", "Stranger")
		forbidden := server.Put(t, nil, fmt.Sprintf("/recipes/%s", created.Id), &recipes.RecipeInput{Title: aws.String("Mine now")})
		expectStatus(t, forbidden, 401)

		server.UpdateIdentity("chef", "Chef")
		var updated recipes.Recipe
		update := server.Put(t, &updated, fmt.Sprintf("/recipes/%s", created.Id), &recipes.RecipeInput{Title: aws.String("Nasi Goreng Spesial")})
		expectStatus(t, update, 200)
		if updated.Title != "Nasi Goreng Spesial" || updated.Category != "Makan Malam" {
			t.Fatalf("Expected a partial update, got %v", updated)
		}

		deleted := server.Delete(t, fmt.Sprintf("/recipes/%s", created.Id))
		expectStatus(t, deleted, 204)
		missing := server.Get(t, nil, fmt.Sprintf("/recipes/%s", created.Id))
		expectStatus(t, missing, 404)
	})

	t.Run("AnonymousWrites", func(t *testing.T) {
		server.UpdateIdentity("", "")
		defer server.UpdateIdentity("nobody", "Nobody")
		response := server.Post(t, nil, "/recipes", &recipes.RecipeInput{
			Title:    aws.String("Ghost Soup"),
			Category: aws.String("Camilan"),
		})
		expectStatus(t, response, 401)
		chatResponse := server.Post(t, nil, "/chat/messages", &chat.MessageInput{Message: "boo"})
		expectStatus(t, chatResponse, 401)
	})

	t.Run("Ratings", func(t *testing.T) {
		server.UpdateIdentity("chef", "Chef")
		recipe := createRecipe(t, server, "Rendang", "Hidangan Utama")
		path := fmt.Sprintf("/recipes/%s/ratings", recipe.Id)

		server.UpdateIdentity("u1", "One")
		var first recipes.Rating
		expectStatus(t, server.Post(t, &first, path, &recipes.RatingInput{Rating: 5}), 200)
		if !first.Created || first.Average != 5 || first.RatingsCount != 1 {
			t.Fatalf("Unexpected first rating %v", first)
		}
		var again recipes.Rating
		expectStatus(t, server.Post(t, &again, path, &recipes.RatingInput{Rating: 1}), 200)
		if again.Created || again.Rating != 5 {
			t.Fatalf("Expected the first rating to stand, got %v", again)
		}
		expectStatus(t, server.Post(t, nil, path, &recipes.RatingInput{Rating: 6}), 400)

		server.UpdateIdentity("u2", "Two")
		var second recipes.Rating
		expectStatus(t, server.Post(t, &second, path, &recipes.RatingInput{Rating: 4}), 200)
		if second.Average != 4.5 || second.RatingsCount != 2 {
			t.Fatalf("Unexpected aggregate %v", second)
		}

		var mine recipes.UserRating
		expectStatus(t, server.Get(t, &mine, path+"/me"), 200)
		if mine.Rating != 4 {
			t.Fatalf("Expected my rating of 4, got %d", mine.Rating)
		}
		server.UpdateIdentity("u3", "Three")
		expectStatus(t, server.Get(t, nil, path+"/me"), 404)

		var stored recipes.Recipe
		expectStatus(t, server.Get(t, &stored, fmt.Sprintf("/recipes/%s", recipe.Id)), 200)
		if stored.Rating != 4.5 || stored.RatingsCount != 2 {
			t.Fatalf("Expected the aggregate on the recipe, got %v", stored)
		}
		expectStatus(t, server.Post(t, nil, "/recipes/missing/ratings", &recipes.RatingInput{Rating: 3}), 404)
	})

	t.Run("Trending", func(t *testing.T) {
		server.UpdateIdentity("chef", "Chef")
		low := createRecipe(t, server, "Tahu Goreng", "Camilan")
		high := createRecipe(t, server, "Sate Ayam", "Camilan")
		server.UpdateIdentity("critic", "Critic")
		expectStatus(t, server.Post(t, nil, fmt.Sprintf("/recipes/%s/ratings", low.Id), &recipes.RatingInput{Rating: 2}), 200)
		expectStatus(t, server.Post(t, nil, fmt.Sprintf("/recipes/%s/ratings", high.Id), &recipes.RatingInput{Rating: 5}), 200)

		var trending util.Page[recipes.Recipe]
		response := server.GetQuery(t, &trending, "/recipes/trending", map[string]string{"limit": "1"})
		expectStatus(t, response, 200)
		if len(trending.Items) != 1 || trending.Items[0].Rating != 5 {
			t.Fatalf("Expected the best rated recipe first, got %v", trending.Items)
		}
	})

	t.Run("Comments", func(t *testing.T) {
		server.UpdateIdentity("chef", "Chef")
		recipe := createRecipe(t, server, "Soto Ayam", "Makan Siang")
		path := fmt.Sprintf("/recipes/%s/comments", recipe.Id)

		server.UpdateIdentity("u1", "One")
		var comment comments.Comment
		posted := server.Post(t, &comment, path, &comments.CommentInput{
			Content: "<b>Mantap</b> sekali",
			Rating:  aws.Int(4),
		})
		expectStatus(t, posted, 201)
		if comment.Content != "Mantap sekali" || comment.Rating == nil || *comment.Rating != 4 {
			t.Fatalf("Unexpected comment %v", comment)
		}
		expectStatus(t, server.Post(t, nil, path, &comments.CommentInput{Content: "<p> </p>"}), 400)
		expectStatus(t, server.Post(t, nil, "/recipes/missing/comments", &comments.CommentInput{Content: "hello"}), 404)

		server.UpdateIdentity("u2", "Two")
		var reply comments.Reply
		expectStatus(t, server.Post(t, &reply, fmt.Sprintf("/comments/%s/replies", comment.Id), &comments.ReplyInput{Content: "Setuju"}), 201)
		expectStatus(t, server.Post(t, nil, "/comments/missing/replies", &comments.ReplyInput{Content: "?"}), 404)

		var like comments.Like
		expectStatus(t, server.Post(t, &like, fmt.Sprintf("/comments/%s/like", comment.Id), nil), 200)
		if !like.Liked || like.Likes != 1 {
			t.Fatalf("Expected a like, got %v", like)
		}
		expectStatus(t, server.Post(t, &like, fmt.Sprintf("/comments/%s/like", reply.Id), nil), 200)
		if !like.Liked || like.Likes != 1 {
			t.Fatalf("Expected a reply like, got %v", like)
		}
		expectStatus(t, server.Post(t, nil, "/comments/missing/like", nil), 404)

		var threads util.Page[comments.Comment]
		expectStatus(t, server.Get(t, &threads, path), 200)
		if len(threads.Items) != 1 {
			t.Fatalf("Expected one thread, got %v", threads.Items)
		}
		thread := threads.Items[0]
		if !thread.Liked || len(thread.Replies) != 1 || !thread.Replies[0].Liked {
			t.Fatalf("Expected the viewer likes on the thread, got %v", thread)
		}

		server.UpdateIdentity("u1", "One")
		expectStatus(t, server.Get(t, &threads, path), 200)
		if threads.Items[0].Liked || threads.Items[0].Likes != 1 {
			t.Fatalf("Expected another viewer to see the count only, got %v", threads.Items[0])
		}

		server.UpdateIdentity("chef", "Chef")
		expectStatus(t, server.Delete(t, fmt.Sprintf("/recipes/%s", recipe.Id)), 204)
		expectStatus(t, server.Get(t, &threads, path), 200)
		if len(threads.Items) != 0 {
			t.Fatalf("Expected comments removed with the recipe, got %v", threads.Items)
		}
	})

	t.Run("UsersAndFavorites", func(t *testing.T) {
		server.UpdateIdentity("cook", "Cook")
		var profile users.Profile
		expectStatus(t, server.Put(t, &profile, "/users/me", &users.ProfileInput{}), 200)
		if profile.Id != "cook" || profile.DisplayName != "Cook" {
			t.Fatalf("Expected a profile from the claims, got %v", profile)
		}
		expectStatus(t, server.Get(t, &profile, "/users/me"), 200)

		recipe := createRecipe(t, server, "Gado Gado", "Hidangan Sehat")
		var activity util.Page[users.Activity]
		expectStatus(t, server.Get(t, &activity, "/users/cook/activity"), 200)
		if len(activity.Items) != 1 || activity.Items[0].RecipeName != "Gado Gado" {
			t.Fatalf("Expected the created recipe in the activity, got %v", activity.Items)
		}
		expectStatus(t, server.Get(t, nil, "/users/unknown/activity"), 404)

		var favorite users.Favorite
		expectStatus(t, server.Post(t, &favorite, fmt.Sprintf("/users/me/favorites/%s", recipe.Id), nil), 200)
		if !favorite.Favorite {
			t.Fatalf("Expected the recipe to be a favorite, got %v", favorite)
		}
		var favorites util.Page[recipes.Recipe]
		expectStatus(t, server.Get(t, &favorites, "/users/me/favorites"), 200)
		if len(favorites.Items) != 1 || favorites.Items[0].Id != recipe.Id {
			t.Fatalf("Expected one favorite, got %v", favorites.Items)
		}
		expectStatus(t, server.Get(t, &favorites, "/users/cook/favorites"), 200)
		if len(favorites.Items) != 1 {
			t.Fatalf("Expected public favorites, got %v", favorites.Items)
		}

		expectStatus(t, server.Delete(t, fmt.Sprintf("/recipes/%s", recipe.Id)), 204)
		expectStatus(t, server.Get(t, &favorites, "/users/me/favorites"), 200)
		if len(favorites.Items) != 0 {
			t.Fatalf("Expected dangling favorites dropped, got %v", favorites.Items)
		}
		expectStatus(t, server.Get(t, &activity, "/users/cook/activity"), 200)
		if len(activity.Items) != 0 {
			t.Fatalf("Expected the activity entry removed, got %v", activity.Items)
		}
	})

	t.Run("Chat", func(t *testing.T) {
		server.UpdateIdentity("u1", "One")
		var message chat.Message
		expectStatus(t, server.Post(t, &message, "/chat/messages", &chat.MessageInput{Message: "Halo semua"}), 201)
		if message.Sender.Id != "u1" || message.Sender.DisplayName != "One" {
			t.Fatalf("Expected the sender snapshot, got %v", message.Sender)
		}
		server.UpdateIdentity("u2", "Two")
		expectStatus(t, server.Post(t, nil, "/chat/messages", &chat.MessageInput{Message: "Halo juga"}), 201)
		expectStatus(t, server.Post(t, nil, "/chat/messages", &chat.MessageInput{Message: "  "}), 400)

		var messages util.Page[chat.Message]
		expectStatus(t, server.Get(t, &messages, "/chat/messages"), 200)
		if len(messages.Items) != 2 || messages.Items[0].Message != "Halo semua" {
			t.Fatalf("Expected messages oldest first, got %v", messages.Items)
		}
	})

	t.Run("Options", func(t *testing.T) {
		response := server.Options(t, "/recipes")
		expectStatus(t, response, 200)
		if response.Headers["access-control-allow-origin"] != "*" {
			t.Fatalf("Expected CORS headers, got %v", response.Headers)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		expectStatus(t, server.Get(t, nil, "/pantry"), 404)
		expectStatus(t, server.Request(t, "PATCH", "/recipes", nil, nil, nil), 404)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		server.UpdateIdentity("chef", "Chef")
		response := server.Request(t, "POST", "/recipes", []byte("{not json"), nil, nil)
		expectStatus(t, response, 400)
	})
}

func TestRateLimit(t *testing.T) {
	server := NewLocalServer(t)
	server.Router.Use(filters.NewRateLimitFilter(1))
	server.UpdateIdentity("spammer", "Spammer")
	expectStatus(t, server.Post(t, nil, "/chat/messages", &chat.MessageInput{Message: "one"}), 201)
	expectStatus(t, server.Post(t, nil, "/chat/messages", &chat.MessageInput{Message: "two"}), 429)
	expectStatus(t, server.Get(t, nil, "/chat/messages"), 200)
	server.UpdateIdentity("patient", "Patient")
	expectStatus(t, server.Post(t, nil, "/chat/messages", &chat.MessageInput{Message: "three"}), 201)
}

func TestRouterMetrics(t *testing.T) {
	server := NewLocalServer(t)
	registry := prometheus.NewRegistry()
	server.Router.Metrics = metrics.NewCollector(registry)
	server.Get(t, nil, "/recipes")
	server.Get(t, nil, "/pantry")
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %s", err)
	}
	var requests int
	for _, family := range families {
		if family.GetName() == "recipes_requests_total" {
			requests = len(family.GetMetric())
		}
	}
	if requests != 2 {
		t.Fatalf("Expected two request series, got %d", requests)
	}
}

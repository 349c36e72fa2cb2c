// Package server runs the API Gateway router behind a plain HTTP listener for
// local development.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/chat"
	"recipeshare.me/recipes/internal/metrics"
	"recipeshare.me/recipes/internal/routes"
	chatRoutes "recipeshare.me/recipes/internal/routes/chat"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Router   *routes.Router
	Chat     *chat.Service
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// ToEvent converts an HTTP request into the event API Gateway would deliver.
func ToEvent(r *http.Request) (events.APIGatewayV2HTTPRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayV2HTTPRequest{}, err
	}
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ",")
	}
	query := make(map[string]string, len(r.URL.Query()))
	for name, values := range r.URL.Query() {
		query[name] = strings.Join(values, ",")
	}
	sourceIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		sourceIP = host
	}
	event := events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RawPath:               r.URL.Path,
		RawQueryString:        r.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: query,
		Body:                  string(body),
	}
	event.RequestContext.HTTP.Method = r.Method
	event.RequestContext.HTTP.Path = r.URL.Path
	event.RequestContext.HTTP.SourceIP = sourceIP
	event.RequestContext.HTTP.UserAgent = r.UserAgent()
	event.RequestContext.RequestID = middleware.GetReqID(r.Context())
	event.RequestContext.TimeEpoch = time.Now().UnixMilli()
	return event, nil
}

func WriteResponse(w http.ResponseWriter, response events.APIGatewayV2HTTPResponse) {
	for name, value := range response.Headers {
		w.Header().Set(name, value)
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	body := []byte(response.Body)
	if response.IsBase64Encoded {
		if decoded, err := base64.StdEncoding.DecodeString(response.Body); err == nil {
			body = decoded
		}
	}
	w.WriteHeader(statusCode)
	w.Write(body)
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	event, err := ToEvent(r)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}
	WriteResponse(w, s.Router.Invoke(event, r.Context()))
}

// streamChat pushes new chat messages as server sent events until the client
// goes away.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	messages, cancel := s.Chat.Subscribe(r.Context(), r.URL.Query().Get("since"))
	defer cancel()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for message := range messages {
		payload, err := json.Marshal(chatRoutes.NewMessage(message))
		if err != nil {
			s.Logger.Error("failed to encode chat message", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", message.Id(), payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.Gatherer))
	}
	if s.Chat != nil {
		r.Get("/chat/stream", s.streamChat)
	}
	r.HandleFunc("/*", s.invoke)
	return r
}

package routes

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
	"recipeshare.me/recipes/internal/exceptions"
	"recipeshare.me/recipes/internal/metrics"
	"recipeshare.me/recipes/internal/routes/filters"
)

type Route func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error)

type Service interface {
	GetRoutes() map[string]Route
}

type ctxKeyParams struct{}

// Params returns the path parameters matched for the current route.
func Params(ctx context.Context) map[string]string {
	if params, ok := ctx.Value(ctxKeyParams{}).(map[string]string); ok {
		return params
	}
	return map[string]string{}
}

type CachedMatcher struct {
	Matcher    *regexp.Regexp
	ParamNames []string
	Mutex      *sync.Mutex
}

type CachedRoute struct {
	Method  string
	Path    string
	Route   Route
	Matcher *CachedMatcher
}

func (cr *CachedMatcher) Refresh(path string) *regexp.Regexp {
	cr.Mutex.Lock()
	defer cr.Mutex.Unlock()
	if cr.Matcher == nil {
		namex := regexp.MustCompile(":[^/]+")
		regexPath := namex.ReplaceAllStringFunc(path, func(found string) string {
			cr.ParamNames = append(cr.ParamNames, found[1:])
			return "([^/]+)"
		})
		cr.Matcher = regexp.MustCompile("^" + regexPath + "$")
	}
	return cr.Matcher
}

func (cr *CachedRoute) MatchEvent(event events.APIGatewayV2HTTPRequest) (map[string]string, bool) {
	if event.RequestContext.HTTP.Method != cr.Method {
		return nil, false
	}
	if event.RawPath == cr.Path {
		return map[string]string{}, true
	}
	matcher := cr.Matcher.Refresh(cr.Path)
	values := matcher.FindStringSubmatch(event.RawPath)
	if values == nil {
		return nil, false
	}
	params := make(map[string]string, len(cr.Matcher.ParamNames))
	for i, p := range cr.Matcher.ParamNames {
		params[p] = values[i+1]
	}
	return params, true
}

// Pattern is the route label used for metrics, e.g. "GET /recipes/:id".
func (cr *CachedRoute) Pattern() string {
	return cr.Method + " " + cr.Path
}

func (cr *CachedRoute) paramCount() int {
	return strings.Count(cr.Path, ":")
}

type Router struct {
	Filters []filters.RequestFilter
	Routes  []CachedRoute
	Metrics metrics.Recorder
	Logger  *zap.Logger
}

// NewRouter collects the routes of every service. Routes with fewer path
// parameters are matched first, so "/recipes/trending" wins over "/recipes/:id".
func NewRouter(services ...Service) *Router {
	var routes []CachedRoute
	for _, service := range services {
		for composite, route := range service.GetRoutes() {
			parts := strings.SplitN(composite, ":", 2)
			cachedRoute := CachedRoute{
				Method: parts[0],
				Path:   parts[1],
				Route:  route,
				Matcher: &CachedMatcher{
					Mutex: &sync.Mutex{},
				},
			}
			routes = append(routes, cachedRoute)
		}
	}
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].paramCount() != routes[j].paramCount() {
			return routes[i].paramCount() < routes[j].paramCount()
		}
		return routes[i].Pattern() < routes[j].Pattern()
	})
	return &Router{
		Routes: routes,
		Filters: []filters.RequestFilter{
			filters.DefaultCorsFilter(),
			filters.DefaultIdentityFilter(),
		},
		Logger: zap.NewNop(),
	}
}

// Use appends filters to the end of the chain.
func (r *Router) Use(fltrs ...filters.RequestFilter) *Router {
	r.Filters = append(r.Filters, fltrs...)
	return r
}

func (r *Router) translateError(err error, event events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	statusCode := exceptions.StatusCode(err)
	message := err.Error()
	if statusCode >= 500 {
		r.Logger.Error("request failed",
			zap.String("method", event.RequestContext.HTTP.Method),
			zap.String("path", event.RawPath),
			zap.Int("statusCode", statusCode),
			zap.Error(err))
		if statusCode == 500 {
			message = "Unexpected internal error"
		}
	}
	body, _ := json.Marshal(map[string]string{"message": message})
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Content-Length": strconv.Itoa(len(body)),
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    headers,
	}
}

func (r *Router) record(pattern string, event events.APIGatewayV2HTTPRequest, response events.APIGatewayV2HTTPResponse, started time.Time) {
	if r.Metrics != nil {
		r.Metrics.RecordRequest(pattern, event.RequestContext.HTTP.Method, response.StatusCode, time.Since(started))
	}
}

func (r *Router) Invoke(event events.APIGatewayV2HTTPRequest, ctx context.Context) events.APIGatewayV2HTTPResponse {
	started := time.Now()
	filterContext := filters.DefaultFilterContext(event, ctx)
	for _, filter := range r.Filters {
		updatedContext, broken := filter.Filter(filterContext)
		if broken {
			r.record("filtered", event, *updatedContext.Response, started)
			return *updatedContext.Response
		}
		filterContext = updatedContext
	}
	for _, route := range r.Routes {
		if params, ok := route.MatchEvent(*filterContext.Request); ok {
			resp, err := route.Route(event, context.WithValue(*filterContext.Context, ctxKeyParams{}, params))
			if err != nil {
				resp = r.translateError(err, event)
			}
			r.record(route.Pattern(), event, resp, started)
			return resp
		}
	}
	resp := r.translateError(exceptions.NotFound("route", event.RawPath), event)
	r.record("unmatched", event, resp, started)
	return resp
}

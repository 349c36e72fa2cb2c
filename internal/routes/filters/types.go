package filters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/time/rate"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/exceptions"
)

type FilterContext struct {
	Request  *events.APIGatewayV2HTTPRequest
	Response *events.APIGatewayV2HTTPResponse
	Context  *context.Context
}

type RequestFilter interface {
	Filter(ctx *FilterContext) (*FilterContext, bool)
}

// Reject breaks the chain with a JSON error body.
func Reject(ctx *FilterContext, statusCode int, message string) (*FilterContext, bool) {
	body, _ := json.Marshal(map[string]string{"message": message})
	return &FilterContext{
		Request: ctx.Request,
		Context: ctx.Context,
		Response: &events.APIGatewayV2HTTPResponse{
			Headers: map[string]string{
				"Content-Type":   "application/json",
				"Content-Length": strconv.Itoa(len(body)),
			},
			StatusCode: statusCode,
			Body:       string(body),
		},
	}, true
}

type CorsFilter struct {
	Methods []string
	Origins []string
	Headers []string
}

func (cf *CorsFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if ctx.Request.RequestContext.HTTP.Method == "OPTIONS" {
		headers := ctx.Response.Headers
		if headers == nil {
			headers = make(map[string]string, 4)
		}
		headers["content-length"] = "0"
		headers["access-control-allow-headers"] = strings.Join(cf.Headers, ", ")
		headers["access-control-allow-methods"] = strings.Join(cf.Methods, ", ")
		headers["access-control-allow-origin"] = strings.Join(cf.Origins, ", ")
		return &FilterContext{
			Request: ctx.Request,
			Context: ctx.Context,
			Response: &events.APIGatewayV2HTTPResponse{
				Headers:    headers,
				StatusCode: ctx.Response.StatusCode,
			},
		}, true
	}
	return ctx, false
}

// IdentityFilter places the caller identity on the context. It never rejects
// anonymous requests; operations that need an identity check for it. A bearer
// token that fails verification is rejected with 401.
type IdentityFilter struct {
	Verifier *auth.JWTVerifier
}

func claim(values map[string]interface{}, name string) string {
	if value, ok := values[name]; ok && value != nil {
		return fmt.Sprintf("%v", value)
	}
	return ""
}

func identityFromClaims(sub, name, picture string) *auth.Identity {
	if strings.TrimSpace(sub) == "" {
		return nil
	}
	identity := &auth.Identity{
		Id:          sub,
		DisplayName: name,
	}
	if picture != "" {
		identity.PhotoURL = &picture
	}
	return identity
}

// AuthorizerIdentity reads the identity resolved by API Gateway, either from
// a Lambda authorizer context or from JWT authorizer claims.
func AuthorizerIdentity(request *events.APIGatewayV2HTTPRequest) *auth.Identity {
	authorizer := request.RequestContext.Authorizer
	if authorizer == nil {
		return nil
	}
	if len(authorizer.Lambda) > 0 {
		lambda := authorizer.Lambda
		if identity := identityFromClaims(claim(lambda, "sub"), claim(lambda, "name"), claim(lambda, "picture")); identity != nil {
			return identity
		}
	}
	if authorizer.JWT != nil {
		claims := authorizer.JWT.Claims
		return identityFromClaims(claims["sub"], claims["name"], claims["picture"])
	}
	return nil
}

func authorizationHeader(request *events.APIGatewayV2HTTPRequest) (string, bool) {
	for name, value := range request.Headers {
		if strings.EqualFold(name, "authorization") {
			return value, true
		}
	}
	return "", false
}

func (f *IdentityFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	identity := AuthorizerIdentity(ctx.Request)
	if identity == nil && f.Verifier != nil {
		if header, ok := authorizationHeader(ctx.Request); ok {
			claims, err := f.Verifier.ParseBearer(header)
			if err != nil {
				return Reject(ctx, 401, "Unauthorized")
			}
			converted := claims.Identity()
			identity = &converted
		}
	}
	if identity == nil {
		return ctx, false
	}
	updated := auth.WithIdentity(*ctx.Context, *identity)
	return &FilterContext{
		Request:  ctx.Request,
		Response: ctx.Response,
		Context:  &updated,
	}, false
}

// RateLimitFilter applies a token bucket per caller to mutating requests.
// Callers are keyed by identity when present, otherwise by source address.
// Limiters idle for longer than IdleTTL are dropped on the next sweep; a
// fresh limiter starts with a full bucket, so IdleTTL should cover a refill.
type RateLimitFilter struct {
	Limit   rate.Limit
	Burst   int
	IdleTTL time.Duration
	Now     func() time.Time

	mutex     sync.Mutex
	limiters  map[string]*callerLimiter
	lastSweep time.Time
}

type callerLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewRateLimitFilter(perMinute int) *RateLimitFilter {
	burst := perMinute
	if burst < 1 {
		burst = 1
	}
	return &RateLimitFilter{
		Limit:    rate.Limit(float64(perMinute) / 60),
		Burst:    burst,
		IdleTTL:  time.Minute,
		Now:      time.Now,
		limiters: make(map[string]*callerLimiter),
	}
}

// sweep drops idle limiters at most once per IdleTTL. Callers hold the mutex.
func (rf *RateLimitFilter) sweep(now time.Time) {
	if now.Sub(rf.lastSweep) < rf.IdleTTL {
		return
	}
	rf.lastSweep = now
	for key, cl := range rf.limiters {
		if now.Sub(cl.lastAccess) > rf.IdleTTL {
			delete(rf.limiters, key)
		}
	}
}

func (rf *RateLimitFilter) limiter(key string) *rate.Limiter {
	rf.mutex.Lock()
	defer rf.mutex.Unlock()
	now := rf.Now()
	rf.sweep(now)
	cl, ok := rf.limiters[key]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(rf.Limit, rf.Burst)}
		rf.limiters[key] = cl
	}
	cl.lastAccess = now
	return cl.limiter
}

// Tracked reports how many callers currently hold a limiter.
func (rf *RateLimitFilter) Tracked() int {
	rf.mutex.Lock()
	defer rf.mutex.Unlock()
	return len(rf.limiters)
}

func mutating(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

func (rf *RateLimitFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if !mutating(ctx.Request.RequestContext.HTTP.Method) {
		return ctx, false
	}
	key := ctx.Request.RequestContext.HTTP.SourceIP
	if identity, ok := auth.FromContext(*ctx.Context); ok {
		key = identity.Id
	}
	if !rf.limiter(key).Allow() {
		return Reject(ctx, 429, exceptions.TooManyRequests(key).Error())
	}
	return ctx, false
}

func DefaultFilterContext(event events.APIGatewayV2HTTPRequest, ctx context.Context) *FilterContext {
	return &FilterContext{
		Request: &event,
		Response: &events.APIGatewayV2HTTPResponse{
			StatusCode: 200,
		},
		Context: &ctx,
	}
}

func DefaultCorsFilter() *CorsFilter {
	methods := [4]string{"GET", "PUT", "POST", "DELETE"}
	headers := [3]string{"Content-Type", "Content-Length", "Authorization"}
	origins := [1]string{"*"}
	return &CorsFilter{
		Methods: methods[:],
		Headers: headers[:],
		Origins: origins[:],
	}
}

func DefaultIdentityFilter() *IdentityFilter {
	return &IdentityFilter{}
}

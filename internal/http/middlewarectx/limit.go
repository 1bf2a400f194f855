package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/lms/internal/http/response"
)

// Limiter ограничивает частоту запросов отдельно для каждого клиента.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewLimiter создаёт Limiter: perSecond запросов в секунду с запасом burst.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.clients[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[key] = lim
	}
	return lim
}

// RateLimitMiddleware отвечает 429, если клиент превысил лимит.
// Клиент определяется по пользователю из токена, а для анонимных запросов по IP.
func RateLimitMiddleware(log *slog.Logger, limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiter.get(key).Allow() {
				log.Warn("too many requests", slog.String("client", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if actor := ActorFrom(r.Context()); actor.Authenticated {
		return "user:" + strconv.FormatInt(actor.ID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

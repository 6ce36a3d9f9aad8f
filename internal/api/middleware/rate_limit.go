package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers"
)

const rateLimitKeyPrefix = "freetime:rate_limit"

// Limiter решает, пропускать ли очередной запрос с данным ключом
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitRecorder счётчик отклонённых запросов (реализуется *metrics.Metrics)
type RateLimitRecorder interface {
	ObserveRateLimited()
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RedisLimiter фиксированное окно в Redis: INCR ключа окна и EXPIRE на длину окна
// Лимит общий для всех экземпляров сервиса
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter создает лимитер на limit запросов за window
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow реализует Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := fmt.Sprintf("%s:%s:%d", rateLimitKeyPrefix, key, l.now().UnixNano()/int64(l.window))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit - redis pipeline: %w", err)
	}

	return incr.Val() <= l.limit, nil
}

// LocalLimiter token bucket на каждый ключ в памяти процесса
// Используется без Redis и как запасной вариант при его недоступности.
// Ключи без запросов дольше ttl удаляются: за это время bucket всё равно наполняется до конца
type LocalLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter создает лимитер со средней скоростью limit запросов за window
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	ttl := window
	if ttl < minVisitorTTL {
		ttl = minVisitorTTL
	}
	return &LocalLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(limit) / window.Seconds()),
		burst:     limit,
		ttl:       ttl,
		now:       time.Now,
	}
}

const minVisitorTTL = time.Minute

// Allow реализует Limiter
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	if l.lastSweep.IsZero() {
		l.lastSweep = now
	}
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1), nil
}

// sweep удаляет ключи, простаивающие дольше ttl. Вызывается под l.mu
func (l *LocalLimiter) sweep(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.ttl {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}

func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// TrustedProxies адреса балансировщиков, которым разрешено передавать X-Forwarded-For
type TrustedProxies []*net.IPNet

// ParseTrustedProxies разбирает список IP и CIDR из конфигурации
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(values))
	for _, value := range values {
		if !strings.Contains(value, "/") {
			ip := net.ParseIP(value)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", value)
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", value, err)
		}
		proxies = append(proxies, network)
	}
	return proxies, nil
}

func (p TrustedProxies) contains(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, network := range p {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// RateLimit ограничивает число запросов с одного IP
// При ошибке основного лимитера решение принимает fallback
func RateLimit(primary, fallback Limiter, trusted TrustedProxies, recorder RateLimitRecorder, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)

			allowed, err := primary.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("RateLimit: primary limiter failed, using fallback: %v", err)
				allowed, _ = fallback.Allow(r.Context(), ip)
			}

			if !allowed {
				logger.Warn("%s %s - Rate limit exceeded: ip=%s, request_id=%s",
					r.Method, r.URL.Path, ip, RequestIDFromContext(r.Context()))
				if recorder != nil {
					recorder.ObserveRateLimited()
				}
				handlers.RespondTooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP адрес соединения. X-Forwarded-For учитывается, только если соединение пришло
// от доверенного прокси: тогда берётся правый адрес цепочки, не принадлежащий прокси
func clientIP(r *http.Request, trusted TrustedProxies) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}

	if !trusted.contains(peer) {
		return peer
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return peer
	}

	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" || net.ParseIP(hop) == nil {
			return peer
		}
		if !trusted.contains(hop) {
			return hop
		}
	}
	return peer
}

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID заголовок с идентификатором запроса
const HeaderRequestID = "X-Request-ID"

// requestIDMaxLen ограничивает длину внешнего идентификатора, он попадает в логи
const requestIDMaxLen = 64

type requestIDKey struct{}

// RequestID берёт X-Request-ID из запроса или генерирует UUID
// и возвращает его в заголовке ответа
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		w.Header().Set(HeaderRequestID, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, rid)))
	})
}

// RequestIDFromContext идентификатор текущего запроса, пустая строка если его нет
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// Package auth проверяет общий секрет, которым хранилище документов
// подписывает вызовы триггера.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const bearerPrefix = "Bearer "

type Auth struct {
	token string
	log   *slog.Logger
}

// New создает middleware. Пустой token отключает проверку.
func New(token string, log *slog.Logger) *Auth {
	return &Auth{
		token: token,
		log:   log.With("component", "trigger_auth"),
	}
}

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if a.token == "" {
			next(ctx)
			return
		}

		header := ctx.Header("Authorization")
		presented, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(a.token)) != 1 {
			a.log.Warn("rejected trigger call", "remote_addr", ctx.RemoteAddr())
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")

			if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
				"error": "Unauthorized",
			}); err != nil {
				a.log.Error("encode unauthorized response", "error", err)
			}
			return
		}

		next(ctx)
	}
}

package auth

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/shop-auth/internal/account"
)

const (
	// SessionCookieName はセッションクッキーの名前です。
	SessionCookieName = "shop_session"

	sessionKeyUserID   = "auth_uid"
	sessionKeyIssuedAt = "issued_at"
)

// ContextUserKey は、ハンドラー間でログイン済みアカウントIDを共有するためのキーです。
const ContextUserKey = "auth.uid"

var maxSessionLifetime = 12 * time.Hour

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// createUserSession はセッションの認証マーカーをアカウントに紐付けます。
// ログイン前の状態（フラッシュや仕込まれた値）を引き継がないよう、
// 既存の値を全てクリアしてから書き込みます。
func createUserSession(session sessions.Session, acc *account.Account) error {
	session.Clear()
	session.Set(sessionKeyUserID, acc.ID)
	session.Set(sessionKeyIssuedAt, time.Now().Unix())
	return session.Save()
}

// destroyUserSession は認証マーカーを破棄し、クッキーを無効化します。
// 匿名セッションに対して呼んでも安全です（冪等）。
func destroyUserSession(session sessions.Session) error {
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// SessionUserID は現在のセッションに紐付くアカウントIDを返します。
// 未ログインの場合は ok=false を返します。
func SessionUserID(c *gin.Context) (string, bool) {
	uid, ok := sessions.Default(c).Get(sessionKeyUserID).(string)
	return uid, ok && uid != ""
}

// RequireAuth は認証済みセッションを要求するミドルウェアを返します。
// 未ログインまたは期限切れの場合はログインページへリダイレクトします。
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		uid, ok := session.Get(sessionKeyUserID).(string)
		if !ok || uid == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		issuedAt := readUnix(session.Get(sessionKeyIssuedAt))
		if issuedAt.IsZero() || time.Since(issuedAt) > maxSessionLifetime {
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, uid)
		c.Next()
	}
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}

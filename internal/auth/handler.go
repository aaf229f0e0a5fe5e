// Package auth は顧客アカウントの新規登録・ログイン・ログアウトと
// それに付随するセッション状態を担います。
package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/shop-auth/internal/account"
	"github.com/yourusername/shop-auth/internal/crypto"
)

// ユーザー向けメッセージ。ログイン失敗はアカウント不存在とパスワード不一致を
// 区別できないよう、常に同一の文言を返します。
const (
	msgInvalidInput       = "Please check your input. Password must be at least 6 characters long, postal code must be 5 characters long."
	msgDuplicateAccount   = "User exists already! Try logging in instead!"
	msgInvalidCredentials = "Invalid credentials - please double-check your email and password!"
	msgTooManyAttempts    = "Too many failed login attempts - please try again later."
)

// アカウント不存在時に照合する無効なダイジェスト。応答時間から存在を推測されないようにします。
var placeholderDigest = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Manager は認証フローのハンドラーをまとめた構造体です。
type Manager struct {
	accounts account.Store
	hasher   crypto.PasswordHasher
	limiter  AttemptLimiter
	logger   *log.Logger
}

// NewManager は認証マネージャーを作成します。limiter は nil でも動作します（制限なし）。
func NewManager(accounts account.Store, hasher crypto.PasswordHasher, limiter AttemptLimiter, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		accounts: accounts,
		hasher:   hasher,
		limiter:  limiter,
		logger:   logger,
	}
}

// enteredData は1リクエスト分のフォーム入力のスナップショットです。
type enteredData struct {
	Email        string
	ConfirmEmail string
	Password     string
	Fullname     string
	Street       string
	Postal       string
	City         string
}

// flash は入力値のエコーとエラーメッセージをフラッシュペイロードに組み立てます。
func (d enteredData) flash(message string) FlashData {
	return FlashData{
		ErrorMessage: message,
		Email:        d.Email,
		ConfirmEmail: d.ConfirmEmail,
		Password:     d.Password,
		Fullname:     d.Fullname,
		Street:       d.Street,
		Postal:       d.Postal,
		City:         d.City,
	}
}

// GetSignup は GET /signup のハンドラーです。
// フラッシュがあれば入力済みの値でフォームを再表示し、無ければ空のフォームを表示します。
func (m *Manager) GetSignup(c *gin.Context) {
	session := sessions.Default(c)
	data, ok := flashFromSession(session)
	if !ok {
		data = FlashData{}
	}
	c.HTML(http.StatusOK, "signup.html", gin.H{"inputData": data})
}

// Signup は POST /signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	entered := enteredData{
		Email:        c.PostForm("email"),
		ConfirmEmail: c.PostForm("confirm-email"),
		Password:     c.PostForm("password"),
		Fullname:     c.PostForm("fullname"),
		Street:       c.PostForm("street"),
		Postal:       c.PostForm("postal"),
		City:         c.PostForm("city"),
	}

	if !signupDetailsValid(entered.Email, entered.Password, entered.Fullname, entered.Street, entered.Postal, entered.City) ||
		!emailConfirmed(entered.Email, entered.ConfirmEmail) {
		m.flashAndRedirect(c, entered.flash(msgInvalidInput), "/signup")
		return
	}

	ctx := c.Request.Context()
	exists, err := m.accounts.ExistsByEmail(ctx, entered.Email)
	if err != nil {
		m.serverError(c, fmt.Errorf("check account existence: %w", err))
		return
	}
	if exists {
		m.flashAndRedirect(c, entered.flash(msgDuplicateAccount), "/signup")
		return
	}

	digest, err := m.hasher.Hash(entered.Password)
	if err != nil {
		m.serverError(c, fmt.Errorf("hash password: %w", err))
		return
	}

	acc := &account.Account{
		ID:           uuid.NewString(),
		Email:        entered.Email,
		PasswordHash: digest,
		Fullname:     entered.Fullname,
		Street:       entered.Street,
		Postal:       entered.Postal,
		City:         entered.City,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.accounts.Create(ctx, acc); err != nil {
		// 存在確認と INSERT の間に同じメールアドレスで登録された場合も重複として扱う
		if errors.Is(err, account.ErrDuplicateEmail) {
			m.flashAndRedirect(c, entered.flash(msgDuplicateAccount), "/signup")
			return
		}
		m.serverError(c, fmt.Errorf("create account: %w", err))
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// GetLogin は GET /login のハンドラーです。
func (m *Manager) GetLogin(c *gin.Context) {
	session := sessions.Default(c)
	data, ok := flashFromSession(session)
	if !ok {
		data = FlashData{}
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"inputData": data})
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	entered := enteredData{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	ctx := c.Request.Context()
	clientKey := c.ClientIP()

	if m.limiter != nil {
		if retryAfter := m.limiter.CheckLock(ctx, clientKey); retryAfter > 0 {
			// Retry-After は秒数またはHTTP-Date形式が推奨されているため秒数で返す
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
			m.flashAndRedirect(c, entered.flash(msgTooManyAttempts), "/login")
			return
		}
	}

	acc, err := m.accounts.FindByEmail(ctx, entered.Email)
	switch {
	case errors.Is(err, account.ErrNotFound):
		// 不存在時もハッシュ照合を1回行い、応答時間を一致側と揃える
		m.hasher.Verify(entered.Password, placeholderDigest)
		m.loginFailed(c, entered, clientKey)
		return
	case err != nil:
		m.serverError(c, fmt.Errorf("look up account: %w", err))
		return
	}

	if !m.hasher.Verify(entered.Password, acc.PasswordHash) {
		m.loginFailed(c, entered, clientKey)
		return
	}

	if m.limiter != nil {
		m.limiter.Reset(ctx, clientKey)
	}

	session := sessions.Default(c)
	if err := createUserSession(session, acc); err != nil {
		m.serverError(c, fmt.Errorf("save session: %w", err))
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout は POST /logout のハンドラーです。未ログインでも成功として扱います。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if err := destroyUserSession(session); err != nil {
		// 破棄の失敗はユーザーには見せない
		m.logger.Printf("destroy session: %v", err)
	}
	c.Redirect(http.StatusFound, "/login")
}

// loginFailed は失敗を記録し、原因を問わず同一のメッセージでログインページへ戻します。
func (m *Manager) loginFailed(c *gin.Context, entered enteredData, clientKey string) {
	if m.limiter != nil {
		m.limiter.RecordFailure(c.Request.Context(), clientKey)
	}
	m.flashAndRedirect(c, entered.flash(msgInvalidCredentials), "/login")
}

// flashAndRedirect はフラッシュを保存してからリダイレクトを発行します。
// 保存の完了がリダイレクトの前提条件です。
func (m *Manager) flashAndRedirect(c *gin.Context, data FlashData, target string) {
	session := sessions.Default(c)
	if err := flashToSession(session, data); err != nil {
		m.serverError(c, fmt.Errorf("save flash: %w", err))
		return
	}
	c.Redirect(http.StatusFound, target)
}

// serverError はインフラ障害を記録し、汎用のエラーページを返します。
// フラッシュメッセージには変換しません。
func (m *Manager) serverError(c *gin.Context, err error) {
	m.logger.Printf("auth: %v", err)
	c.HTML(http.StatusInternalServerError, "500.html", nil)
	c.Abort()
}

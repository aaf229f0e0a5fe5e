package auth

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
)

const sessionKeyFlash = "flash_data"

// FlashData はリダイレクトをまたいで一度だけ読み出されるフォーム再表示用データです。
// エラーメッセージと、直前に入力された値のエコーを保持します。
type FlashData struct {
	ErrorMessage string
	Email        string
	ConfirmEmail string
	Password     string
	Fullname     string
	Street       string
	Postal       string
	City         string
}

func init() {
	// セッションストアは gob でシリアライズするため、独自型の登録が必要
	gob.Register(FlashData{})
}

// flashToSession はフラッシュデータをセッションに書き込みます。
// 後続リクエストが未保存のスロットを読む競合を避けるため、呼び出し側は
// Save の完了（nil 返却）を確認してからリダイレクトを発行します。
func flashToSession(session sessions.Session, data FlashData) error {
	session.Set(sessionKeyFlash, data)
	return session.Save()
}

// flashFromSession はフラッシュデータを読み出し、同じステップでスロットをクリアします。
// データが無い場合は false を返し、呼び出し側が空のフォーム状態を使用します。
func flashFromSession(session sessions.Session) (FlashData, bool) {
	v := session.Get(sessionKeyFlash)
	if v == nil {
		return FlashData{}, false
	}

	session.Delete(sessionKeyFlash)
	_ = session.Save()

	data, ok := v.(FlashData)
	if !ok {
		return FlashData{}, false
	}
	return data, true
}

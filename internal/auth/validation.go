package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	postalCodeLength  = 5
)

// local@domain かつドメインにドットを含む形式のみ許可する
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// signupDetailsValid は新規登録フォームの全フィールドを検証します。
// どのフィールドが不正かは呼び出し側へ伝えず、全体の合否のみを返します。
func signupDetailsValid(email, password, fullname, street, postal, city string) bool {
	return emailValid(email) &&
		passwordValid(password) &&
		fullnameValid(fullname) &&
		nonEmpty(street) &&
		postalValid(postal) &&
		nonEmpty(city)
}

// emailConfirmed は確認用メールアドレスとの完全一致を検証します（大文字小文字を区別、正規化なし）。
func emailConfirmed(email, confirmEmail string) bool {
	return email == confirmEmail
}

func emailValid(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}

func passwordValid(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLength
}

// fullnameValid は空でなく、姓と名の区切りとして空白を1つ以上含むことを検証します。
func fullnameValid(fullname string) bool {
	trimmed := strings.TrimSpace(fullname)
	return trimmed != "" && strings.Contains(trimmed, " ")
}

func postalValid(postal string) bool {
	return utf8.RuneCountInString(postal) == postalCodeLength
}

func nonEmpty(value string) bool {
	return strings.TrimSpace(value) != ""
}

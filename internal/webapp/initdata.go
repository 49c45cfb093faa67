// Package webapp authenticates Telegram mini-app requests via the
// signed init-data payload instead of a session token.
package webapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidInitData is returned when the signature does not match or
// the payload is malformed.
var ErrInvalidInitData = errors.New("invalid init data")

// InitDataUser is the user object embedded in init data.
type InitDataUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
}

// InitData is the validated payload of a mini-app request.
type InitData struct {
	User     *InitDataUser `json:"user"`
	AuthDate string        `json:"authDate"`
	QueryID  string        `json:"queryId"`
}

// Validator checks init-data signatures for one bot token.
type Validator struct {
	secret []byte
}

// NewValidator derives the signing secret from the bot token:
// HMAC-SHA256 keyed with the literal "WebAppData".
func NewValidator(botToken string) *Validator {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &Validator{secret: mac.Sum(nil)}
}

// Validate verifies the init-data signature and returns the parsed
// payload. The signed message is the newline-joined, key-sorted
// key=value pairs of every field except hash itself.
func (v *Validator) Validate(initData string) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	if !hmac.Equal([]byte(v.sign(values)), []byte(hash)) {
		return nil, ErrInvalidInitData
	}

	data := &InitData{
		AuthDate: values.Get("auth_date"),
		QueryID:  values.Get("query_id"),
	}
	if raw := values.Get("user"); raw != "" {
		var user InitDataUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, ErrInvalidInitData
		}
		data.User = &user
	}
	return data, nil
}

func (v *Validator) sign(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, values.Get(key)))
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

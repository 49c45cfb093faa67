package webapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "12345:test-token"

// signInitData produces a correctly signed init-data string the way
// Telegram clients do.
func signInitData(t *testing.T, token string, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields[key])
	}

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(token))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestValidateOK(t *testing.T) {
	initData := signInitData(t, testToken, map[string]string{
		"user":      `{"id":777,"first_name":"Ali","username":"ali_77"}`,
		"auth_date": "1700000000",
		"query_id":  "AAE3Qw",
	})

	data, err := NewValidator(testToken).Validate(initData)
	require.NoError(t, err)
	require.NotNil(t, data.User)
	assert.Equal(t, int64(777), data.User.ID)
	assert.Equal(t, "Ali", data.User.FirstName)
	assert.Equal(t, "ali_77", data.User.Username)
	assert.Equal(t, "1700000000", data.AuthDate)
	assert.Equal(t, "AAE3Qw", data.QueryID)
}

func TestValidateNoUser(t *testing.T) {
	initData := signInitData(t, testToken, map[string]string{
		"auth_date": "1700000000",
	})

	data, err := NewValidator(testToken).Validate(initData)
	require.NoError(t, err)
	assert.Nil(t, data.User)
}

func TestValidateTamperedHash(t *testing.T) {
	initData := signInitData(t, testToken, map[string]string{
		"user":      `{"id":777}`,
		"auth_date": "1700000000",
	})
	tampered := strings.Replace(initData, "hash=", "hash=00", 1)

	_, err := NewValidator(testToken).Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestValidateTamperedPayload(t *testing.T) {
	initData := signInitData(t, testToken, map[string]string{
		"user":      `{"id":777}`,
		"auth_date": "1700000000",
	})
	tampered := strings.Replace(initData, "1700000000", "1800000000", 1)

	_, err := NewValidator(testToken).Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestValidateWrongToken(t *testing.T) {
	initData := signInitData(t, "999:other-token", map[string]string{
		"auth_date": "1700000000",
	})

	_, err := NewValidator(testToken).Validate(initData)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestValidateMissingHash(t *testing.T) {
	_, err := NewValidator(testToken).Validate("auth_date=1700000000")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestValidateGarbage(t *testing.T) {
	_, err := NewValidator(testToken).Validate("%%%not-a-query")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

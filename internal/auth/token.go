// Package auth checks and locates the bearer token sent with API requests.
package auth

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const EnvAPIToken = "BENCHER_API_TOKEN"

var now = time.Now

// ValidJWT reports whether token is a well-formed JWT that has not expired.
// The signature is not verified here; the server does that.
func ValidJWT(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && !exp.After(now()) {
		return false
	}
	return true
}

// Source names where a resolved token came from.
type Source string

const (
	SourceNone   Source = ""
	SourceFlag   Source = "flag"
	SourceEnv    Source = "env"
	SourceConfig Source = "config"
	SourceFile   Source = "file"
)

var ErrNoToken = errors.New("no api token configured")

// Resolve picks the first non-empty token from the flag value, the
// BENCHER_API_TOKEN environment variable, the config value and the token
// file, in that order. A missing token file is not an error.
func Resolve(flagValue, configValue, tokenPath string) (string, Source, error) {
	if token := strings.TrimSpace(flagValue); token != "" {
		return token, SourceFlag, nil
	}
	if token := strings.TrimSpace(os.Getenv(EnvAPIToken)); token != "" {
		return token, SourceEnv, nil
	}
	if token := strings.TrimSpace(configValue); token != "" {
		return token, SourceConfig, nil
	}
	if strings.TrimSpace(tokenPath) == "" {
		return "", SourceNone, ErrNoToken
	}
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", SourceNone, ErrNoToken
		}
		return "", SourceNone, err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", SourceNone, ErrNoToken
	}
	return token, SourceFile, nil
}

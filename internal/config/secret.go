package config

import (
	"errors"
	"os"
)

// CompiledSecret holds the passphrase for settings.enc provided at build time
// via -ldflags. When empty, LBMENU_SECRET is required.
var CompiledSecret string

// ErrMissingSecret indicates no passphrase is available for encrypted
// settings.
var ErrMissingSecret = errors.New("missing passphrase for encrypted settings; set " + EnvSecret)

// Secret returns the passphrase for encrypted settings. The environment wins
// over the compiled-in value.
func Secret() (string, error) {
	if secret := os.Getenv(EnvSecret); secret != "" {
		return secret, nil
	}
	if CompiledSecret != "" {
		return CompiledSecret, nil
	}
	return "", ErrMissingSecret
}

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/profiles"
)

const (
	appDirName = "lbmenu"
	saltSize   = 16
	nonceSize  = 12

	// EncryptedFileName is the encrypted settings candidate.
	EncryptedFileName = "settings.enc"
	// TokenFileName holds the control channel token inside the settings root.
	TokenFileName = "control.token"
	// DefaultControlAddr is the loopback address of the control channel.
	DefaultControlAddr = "127.0.0.1:47864"
)

// Environment variables consulted by Default.
const (
	EnvSettingsRoot = "LBMENU_SETTINGS_ROOT"
	EnvSecret       = "LBMENU_SECRET"
	EnvRemminaDir   = "LBMENU_REMMINA_DIR"
	EnvControlAddr  = "LBMENU_CONTROL_ADDR"
	EnvLogFile      = "LBMENU_LOG_FILE"
)

// SettingsCandidates lists the settings file names probed in the settings
// root, in priority order.
var SettingsCandidates = []string{
	"settings.xml",
	"settings.json",
	"settings.yaml",
	"settings.yml",
	"settings.toml",
	"settings.hcl",
	EncryptedFileName,
}

// Config is the explicit configuration of one launcher session. It is built
// once in main and passed down; nothing reads it from globals.
type Config struct {
	// SettingsRoot is the directory holding settings, icons and the control
	// token.
	SettingsRoot string
	// SettingsFile overrides settings discovery. Relative paths are resolved
	// against SettingsRoot.
	SettingsFile    string
	ProfileDir      string
	ProfilesEnabled bool
	Watch           bool
	ControlEnabled  bool
	ControlAddr     string
	LogFile         string
	Debug           bool
}

// Default builds a Config from the environment, falling back to the user's
// configuration directory.
func Default() Config {
	cfg := Config{
		SettingsRoot:    strings.TrimSpace(os.Getenv(EnvSettingsRoot)),
		ProfileDir:      strings.TrimSpace(os.Getenv(EnvRemminaDir)),
		ProfilesEnabled: true,
		Watch:           true,
		ControlAddr:     strings.TrimSpace(os.Getenv(EnvControlAddr)),
		LogFile:         strings.TrimSpace(os.Getenv(EnvLogFile)),
	}
	if cfg.SettingsRoot == "" {
		if base, err := os.UserConfigDir(); err == nil {
			cfg.SettingsRoot = filepath.Join(base, appDirName)
		}
	}
	if cfg.ProfileDir == "" {
		cfg.ProfileDir = profiles.DefaultDir()
	}
	if cfg.ControlAddr == "" {
		cfg.ControlAddr = DefaultControlAddr
	}
	return cfg
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SettingsRoot) == "" {
		return errors.New("settings root is not set")
	}
	if c.ControlEnabled && strings.TrimSpace(c.ControlAddr) == "" {
		return errors.New("control channel enabled without an address")
	}
	return nil
}

// EnsureRoot creates the settings root when missing.
func (c Config) EnsureRoot() error {
	if err := os.MkdirAll(c.SettingsRoot, 0o700); err != nil {
		return fmt.Errorf("ensure settings root: %w", err)
	}
	return nil
}

// TokenPath returns the control token location.
func (c Config) TokenPath() string {
	return filepath.Join(c.SettingsRoot, TokenFileName)
}

// IconDir anchors relative icon paths.
func (c Config) IconDir() string {
	return c.SettingsRoot
}

// SettingsPath returns the explicit settings file resolved against the
// settings root, or the first candidate when none is set. The file need not
// exist.
func (c Config) SettingsPath() string {
	if c.SettingsFile != "" {
		if filepath.IsAbs(c.SettingsFile) {
			return c.SettingsFile
		}
		return filepath.Join(c.SettingsRoot, c.SettingsFile)
	}
	if path, err := c.Locate(); err == nil {
		return path
	}
	return filepath.Join(c.SettingsRoot, SettingsCandidates[0])
}

// Locate finds the settings file in effect. It wraps
// configtree.ErrConfigNotFound when nothing exists.
func (c Config) Locate() (string, error) {
	if c.SettingsFile != "" {
		path := c.SettingsPath()
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", configtree.ErrConfigNotFound, path)
			}
			return "", fmt.Errorf("stat settings: %w", err)
		}
		return path, nil
	}
	for _, name := range SettingsCandidates {
		path := filepath.Join(c.SettingsRoot, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no settings file in %s", configtree.ErrConfigNotFound, c.SettingsRoot)
}

// Vars returns the variables every settings file may reference.
func (c Config) Vars() map[string]string {
	vars := map[string]string{
		"settings_root": c.SettingsRoot,
		"settings":      c.SettingsPath(),
	}
	if home, err := os.UserHomeDir(); err == nil {
		vars["home"] = home
	}
	return vars
}

// LoadDocument locates and parses the settings, decrypting settings.enc with
// the session secret.
func (c Config) LoadDocument() (*configtree.Document, error) {
	path, err := c.Locate()
	if err != nil {
		return nil, err
	}
	if !IsEncrypted(path) {
		return configtree.Load(path)
	}

	passphrase, err := Secret()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	data, err := Decrypt(raw, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt settings %s: %w", path, err)
	}
	doc, err := configtree.Parse(data, configtree.SniffFormat(data))
	if err != nil {
		var perr *configtree.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// IsEncrypted reports whether path names an encrypted settings file.
func IsEncrypted(path string) bool {
	return strings.EqualFold(filepath.Ext(path), filepath.Ext(EncryptedFileName))
}

// SaveEncrypted writes plaintext settings to path encrypted with passphrase.
func SaveEncrypted(path string, plaintext []byte, passphrase string) error {
	if passphrase == "" {
		return ErrMissingSecret
	}
	data, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return fmt.Errorf("encrypt settings: %w", err)
	}
	return WriteFile(path, data)
}

// WriteFile replaces path atomically with data.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure settings directory: %w", err)
	}
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Rename(tempFile, path)
}

// Encrypt seals plaintext as salt | nonce | AES-GCM ciphertext with a key
// derived from passphrase.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, saltSize+nonceSize+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt opens data produced by Encrypt.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	if len(ciphertext) < saltSize+nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	salt := ciphertext[:saltSize]
	nonce := ciphertext[saltSize : saltSize+nonceSize]
	payload := ciphertext[saltSize+nonceSize:]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, payload, nil)
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	const (
		keyLength = 32
		n         = 1 << 15
		r         = 8
		p         = 1
	)

	key, err := scrypt.Key([]byte(passphrase), salt, n, r, p, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

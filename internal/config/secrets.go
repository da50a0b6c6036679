package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// passwordKey is the secrets-file entry holding the shared API password.
const passwordKey = "auth_password"

// secretSource abstracts secret lookup for testing.
type secretSource interface {
	Password() (string, error)
}

// secretsFile keeps secrets as a flat JSON object next to the data
// directory, readable only by the owner.
type secretsFile struct{}

// Password returns the stored password, or "" when none is stored.
func (secretsFile) Password() (string, error) {
	secrets, err := readSecrets(secretsFilePath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(secrets[passwordKey]), nil
}

func secretsFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "folio", "secrets.json")
}

// readSecrets loads the secrets file. A missing file is an empty set; an
// unreadable or malformed one is an error.
func readSecrets(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets file: %w", err)
	}
	secrets := map[string]string{}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parsing secrets file %s: %w", path, err)
	}
	return secrets, nil
}

// writeSecrets replaces the secrets file atomically via a temp file and
// rename, so a crash never leaves a truncated file behind.
func writeSecrets(path string, secrets map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating secrets dir: %w", err)
	}
	out, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".secrets-*.json")
	if err != nil {
		return fmt.Errorf("creating temp secrets file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("writing secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing secrets file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// SetPassword stores the shared API password in the local secrets file.
// Other entries in the file are kept. A file that cannot be parsed is left
// untouched and reported.
func SetPassword(password string) error {
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}
	path := secretsFilePath()
	secrets, err := readSecrets(path)
	if err != nil {
		return fmt.Errorf("not overwriting secrets file: %w", err)
	}
	secrets[passwordKey] = password
	return writeSecrets(path, secrets)
}

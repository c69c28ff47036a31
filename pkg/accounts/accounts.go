package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package accounts loads the tracked-account registry (YAML/JSON) and resolves
// account ids to platform handles.

// ErrNotFound is returned when an account id is not in the loaded registry.
var ErrNotFound = errors.New("account not found")

type Account struct {
	ID       string `json:"id" yaml:"id"`
	Platform string `json:"platform" yaml:"platform"`
	Handle   string `json:"handle" yaml:"handle"`
	URL      string `json:"url" yaml:"url"`
}

type registry struct {
	Accounts []Account `json:"accounts" yaml:"accounts"`
}

var (
	regMu       sync.RWMutex
	currentReg  registry
	accountsIdx map[string]Account
)

// Resolver maps an account id to its registry entry.
type Resolver interface {
	Resolve(accountID string) (Account, error)
	ByPlatform(platform string) []Account
}

// RegistryResolver resolves against the registry loaded via LoadAccounts.
type RegistryResolver struct{}

func (RegistryResolver) Resolve(accountID string) (Account, error) {
	a, ok := AccountByID(accountID)
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}
	return a, nil
}

func (RegistryResolver) ByPlatform(platform string) []Account {
	return AccountsByPlatform(platform)
}

// Accounts returns a copy of the currently loaded account registry.
func Accounts() []Account {
	regMu.RLock()
	defer regMu.RUnlock()

	if len(currentReg.Accounts) == 0 {
		return nil
	}

	out := make([]Account, len(currentReg.Accounts))
	copy(out, currentReg.Accounts)
	return out
}

// AccountByID returns the registry entry for the given id, if loaded.
func AccountByID(id string) (Account, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, false
	}

	regMu.RLock()
	defer regMu.RUnlock()

	if accountsIdx == nil {
		return Account{}, false
	}

	a, ok := accountsIdx[id]
	return a, ok
}

// AccountsByPlatform returns all loaded accounts for a platform.
func AccountsByPlatform(platform string) []Account {
	platform = strings.ToLower(strings.TrimSpace(platform))

	regMu.RLock()
	defer regMu.RUnlock()

	var out []Account
	for _, a := range currentReg.Accounts {
		if a.Platform == platform {
			out = append(out, a)
		}
	}
	return out
}

// LoadAccounts loads the account registry from file.
func LoadAccounts(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("accounts file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read accounts file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return err
	}

	if len(reg.Accounts) == 0 {
		return errors.New("accounts file contains no accounts entries")
	}

	idx := make(map[string]Account, len(reg.Accounts))
	for i := range reg.Accounts {
		a := sanitizeAccount(reg.Accounts[i])
		if err := validateAccount(a); err != nil {
			return fmt.Errorf("account[%d]: %w", i, err)
		}
		if _, exists := idx[a.ID]; exists {
			return fmt.Errorf("duplicate account id %q", a.ID)
		}
		reg.Accounts[i] = a
		idx[a.ID] = a
	}

	regMu.Lock()
	currentReg = reg
	accountsIdx = idx
	regMu.Unlock()

	return nil
}

func parseRegistry(data []byte, ext string) (registry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registry{}, errors.New("accounts file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registry, error) {
	var reg registry
	if err := fn(data, &reg); err != nil {
		return registry{}, fmt.Errorf("decode %s accounts: %w", name, err)
	}
	return reg, nil
}

func sanitizeAccount(a Account) Account {
	a.ID = strings.TrimSpace(a.ID)
	a.Platform = strings.ToLower(strings.TrimSpace(a.Platform))
	a.Handle = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(a.Handle), "@"))
	a.URL = strings.TrimSpace(a.URL)
	return a
}

func validateAccount(a Account) error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.Platform == "" {
		return fmt.Errorf("platform is required for account %q", a.ID)
	}
	if a.Handle == "" {
		return fmt.Errorf("handle is required for account %q", a.ID)
	}
	return nil
}

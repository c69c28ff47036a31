package accounts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAccountsYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "accounts.yaml")
	content := `
accounts:
  - id: acct-1
    platform: twitter
    handle: "@someorg"
    url: https://x.com/someorg
  - id: acct-2
    platform: instagram
    handle: someorg
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}

	if err := LoadAccounts(file); err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}

	all := Accounts()
	if len(all) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(all))
	}

	a, ok := AccountByID("acct-1")
	if !ok {
		t.Fatalf("expected account id acct-1 to be loaded")
	}
	if a.Handle != "someorg" {
		t.Fatalf("expected leading @ stripped, got %q", a.Handle)
	}
	if a.URL != "https://x.com/someorg" {
		t.Fatalf("unexpected url: %s", a.URL)
	}

	twitter := AccountsByPlatform("Twitter")
	if len(twitter) != 1 || twitter[0].ID != "acct-1" {
		t.Fatalf("unexpected platform lookup result: %+v", twitter)
	}
}

func TestLoadAccountsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "accounts.yaml")
	content := `
accounts:
  - id: duplicate
    platform: twitter
    handle: one
  - id: duplicate
    platform: facebook
    handle: two
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}

	if err := LoadAccounts(file); err == nil {
		t.Fatalf("expected duplicate account error, got nil")
	}
}

func TestLoadAccountsMissingHandle(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "accounts.json")
	content := `{"accounts":[{"id":"a","platform":"tiktok"}]}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}

	if err := LoadAccounts(file); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestRegistryResolverNotFound(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "accounts.yaml")
	content := `
accounts:
  - id: acct-1
    platform: twitter
    handle: someorg
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}
	if err := LoadAccounts(file); err != nil {
		t.Fatalf("LoadAccounts returned error: %v", err)
	}

	var r RegistryResolver
	if _, err := r.Resolve("acct-1"); err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	if _, err := r.Resolve("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

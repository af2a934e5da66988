// Package authstore manages the on-disk container directories whatsmeow
// device credentials are materialized into, one per bot.
package authstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root is the base directory all tenant/bot container directories live
// under.
type Root struct {
	base string
}

// NewRoot creates a Root rooted at base (e.g. "auth").
func NewRoot(base string) *Root {
	return &Root{base: base}
}

// BotDir returns the container directory path for a bot, e.g.
// "auth/SERVER1/bot_<id>".
func (r *Root) BotDir(tenant, botID string) string {
	return filepath.Join(r.base, tenant, fmt.Sprintf("bot_%s", botID))
}

// Ensure creates a bot's container directory if it does not already exist.
func (r *Root) Ensure(tenant, botID string) (string, error) {
	dir := r.BotDir(tenant, botID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create container dir: %w", err)
	}
	return dir, nil
}

// Exists reports whether a bot's container directory is already present.
func (r *Root) Exists(tenant, botID string) bool {
	_, err := os.Stat(r.BotDir(tenant, botID))
	return err == nil
}

// Remove deletes a bot's container directory entirely. Used only by
// destroy, never by a graceful stop.
func (r *Root) Remove(tenant, botID string) error {
	return os.RemoveAll(r.BotDir(tenant, botID))
}

// Move relocates a bot's container directory to a new tenant, used during
// migration. The bot id stays the same; only the tenant segment changes.
func (r *Root) Move(fromTenant, toTenant, botID string) error {
	from := r.BotDir(fromTenant, botID)
	to := r.BotDir(toTenant, botID)
	if _, err := os.Stat(from); os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o700); err != nil {
		return fmt.Errorf("create target tenant dir: %w", err)
	}
	return os.Rename(from, to)
}

// CredentialsPath returns the path of the materialized credentials file
// inside a bot's container directory.
func (r *Root) CredentialsPath(tenant, botID string) string {
	return filepath.Join(r.BotDir(tenant, botID), "credentials.json")
}

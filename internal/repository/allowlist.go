package repository

import (
	"fmt"

	"go.uber.org/zap"
)

// AllowList is an in-memory snapshot of the allowed_users table, loaded once
// per process. Staleness after load is accepted.
type AllowList struct {
	members map[string]struct{}
}

// IsMember reports whether the identity is admitted.
func (a *AllowList) IsMember(userID string) bool {
	_, ok := a.members[userID]
	return ok
}

// Len returns the number of allowed identities.
func (a *AllowList) Len() int {
	return len(a.members)
}

// SeedAllowedUsers inserts identities into the allow-list table, ignoring
// duplicates. Used to bootstrap from configuration.
func (r *Repository) SeedAllowedUsers(userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin allow-list seed: %w", err)
	}

	for _, id := range userIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO allowed_users (user_id) VALUES (?)`, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to seed allowed user %q: %w", id, err)
		}
	}

	return tx.Commit()
}

// LoadAllowList reads the full allow-list into memory.
func (r *Repository) LoadAllowList() (*AllowList, error) {
	var userIDs []string
	if err := r.db.Select(&userIDs, `SELECT user_id FROM allowed_users`); err != nil {
		return nil, fmt.Errorf("failed to load allow list: %w", err)
	}

	members := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		members[id] = struct{}{}
	}

	r.logger.Info("Allow list loaded", zap.Int("user_count", len(members)))

	return &AllowList{members: members}, nil
}

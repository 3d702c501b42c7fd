// Package sessions holds short-lived per-browser state that must survive
// between the two legs of an OAuth redirect: the anti-forgery state token and
// an optional post-login redirect target. Rows live in the shared database so
// any instance can serve the callback leg.
package sessions

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	KeyOAuthState        = "oauth_state"
	KeyPostLoginRedirect = "post_login_redirect"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Put stores a value under (sessionID, key), replacing any previous value
// and resetting its expiry.
func (s *Store) Put(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_states (session_id, key, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, sessionID, key, value, time.Now().Add(ttl).Unix())
	return err
}

// Take reads and deletes a value in one transaction, so two racing callbacks
// cannot both observe it. Expired rows count as absent.
func (s *Store) Take(ctx context.Context, sessionID, key string) (string, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback()

	var value string
	var expiresAt int64
	err = tx.QueryRowContext(ctx, `
		SELECT value, expires_at FROM login_states WHERE session_id = ? AND key = ?
	`, sessionID, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM login_states WHERE session_id = ? AND key = ?
	`, sessionID, key)
	if err != nil {
		return "", false, err
	}
	if err := tx.Commit(); err != nil {
		return "", false, err
	}

	if expiresAt < time.Now().Unix() {
		return "", false, nil
	}
	return value, true, nil
}

func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM login_states WHERE expires_at < ?
	`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartJanitor sweeps expired rows until ctx is cancelled. Abandoned login
// attempts otherwise accumulate forever.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.PurgeExpired(ctx)
				if err != nil {
					log.Error().Err(err).Msg("session janitor purge failed")
					continue
				}
				if n > 0 {
					log.Debug().Int64("purged", n).Msg("purged expired login states")
				}
			}
		}
	}()
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS targets (
	account_id        TEXT PRIMARY KEY,
	display_name      TEXT NOT NULL,
	notify_channel_id TEXT NOT NULL DEFAULT '',
	added_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	post_id           TEXT PRIMARY KEY,
	author_id         TEXT NOT NULL,
	author_handle     TEXT NOT NULL,
	author_name       TEXT NOT NULL,
	author_avatar_url TEXT NOT NULL,
	text              TEXT NOT NULL,
	hashtags          TEXT NOT NULL,
	media             TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	is_sensitive      INTEGER NOT NULL,
	like_count        INTEGER NOT NULL,
	retweet_count     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	item_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id   TEXT NOT NULL,
	post_id     TEXT NOT NULL,
	captured_at TEXT NOT NULL,
	UNIQUE (target_id, post_id)
);

CREATE TABLE IF NOT EXISTS mutes (
	pattern TEXT PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_items_target ON items (target_id);
`

// SQLiteStore implements Admin on a single-file sqlite database
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema. The
// parent directory is created when missing.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to create data directory", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to open database", err)
	}
	// A single writer keeps sqlite happy under the crawl/interaction overlap
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to apply schema", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListTargets(ctx context.Context) ([]models.Target, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, display_name, notify_channel_id FROM targets ORDER BY added_at, account_id`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to list targets", err)
	}
	defer rows.Close()

	var targets []models.Target
	for rows.Next() {
		var t models.Target
		if err := rows.Scan(&t.AccountID, &t.DisplayName, &t.NotifyChannelID); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to scan target", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to list targets", err)
	}
	return targets, nil
}

func (s *SQLiteStore) ListMuteRules(ctx context.Context) ([]models.MuteRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pattern FROM mutes ORDER BY pattern`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to list mute rules", err)
	}
	defer rows.Close()

	var rules []models.MuteRule
	for rows.Next() {
		var r models.MuteRule
		if err := rows.Scan(&r.Pattern); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to scan mute rule", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to list mute rules", err)
	}
	return rules, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, targetID, postID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM items WHERE target_id = ? AND post_id = ?`, targetID, postID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errs.Wrap(errs.ErrorTypeStorage, "failed to check item", err)
	}
	return true, nil
}

func (s *SQLiteStore) CountSeen(ctx context.Context, targetID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE target_id = ?`, targetID).Scan(&count)
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeStorage, "failed to count items", err)
	}
	return count, nil
}

func (s *SQLiteStore) Save(ctx context.Context, targetID string, post models.Post) error {
	hashtags, err := json.Marshal(post.Hashtags)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to encode hashtags", err)
	}
	media, err := json.Marshal(post.Media)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to encode media", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (post_id, author_id, author_handle, author_name, author_avatar_url,
			text, hashtags, media, created_at, is_sensitive, like_count, retweet_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (post_id) DO NOTHING`,
		post.PostID, post.AuthorID, post.AuthorHandle, post.AuthorName, post.AuthorAvatarURL,
		post.Text, string(hashtags), string(media), post.CreatedAt.UTC().Format(time.RFC3339),
		post.IsSensitive, post.LikeCount, post.RetweetCount)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to save post", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (target_id, post_id, captured_at)
		VALUES (?, ?, ?)
		ON CONFLICT (target_id, post_id) DO NOTHING`,
		targetID, post.PostID, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to save item", err)
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to commit save", err)
	}
	return nil
}

func (s *SQLiteStore) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var (
		post      models.Post
		hashtags  string
		media     string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT post_id, author_id, author_handle, author_name, author_avatar_url,
			text, hashtags, media, created_at, is_sensitive, like_count, retweet_count
		FROM posts WHERE post_id = ?`, postID).Scan(
		&post.PostID, &post.AuthorID, &post.AuthorHandle, &post.AuthorName, &post.AuthorAvatarURL,
		&post.Text, &hashtags, &media, &createdAt, &post.IsSensitive, &post.LikeCount, &post.RetweetCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "failed to load post", err)
	}

	if err := json.Unmarshal([]byte(hashtags), &post.Hashtags); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "corrupt hashtags column", err)
	}
	if err := json.Unmarshal([]byte(media), &post.Media); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "corrupt media column", err)
	}
	if post.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "corrupt created_at column", err)
	}
	return &post, nil
}

func (s *SQLiteStore) AddTarget(ctx context.Context, target models.Target) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO targets (account_id, display_name, notify_channel_id, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			display_name = excluded.display_name,
			notify_channel_id = excluded.notify_channel_id`,
		target.AccountID, target.DisplayName, target.NotifyChannelID,
		s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to add target", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveTarget(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM targets WHERE account_id = ?`, accountID)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to remove target", err)
	}
	return nil
}

func (s *SQLiteStore) AddMuteRule(ctx context.Context, rule models.MuteRule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mutes (pattern) VALUES (?) ON CONFLICT (pattern) DO NOTHING`, rule.Pattern)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to add mute rule", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveMuteRule(ctx context.Context, pattern string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mutes WHERE pattern = ?`, pattern)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "failed to remove mute rule", err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"time"
)

// Visitor is one tracked page hit. The IP is stored hashed.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// SectionCount is how many page views latched a section as seen.
type SectionCount struct {
	Section string `json:"section"`
	Views   int64  `json:"views"`
}

// Message is a contact form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Delivered bool      `json:"delivered"`
	Timestamp time.Time `json:"timestamp"`
}

type Stats struct {
	TotalVisitors    int64          `json:"total_visitors"`
	UniqueVisitors   int64          `json:"unique_visitors"`
	VisitorsToday    int64          `json:"visitors_today"`
	VisitorsThisWeek int64          `json:"visitors_this_week"`
	PageViews        int64          `json:"page_views"`
	Sections         []SectionCount `json:"sections"`
	Messages         int64          `json:"messages"`
	Undelivered      int64          `json:"undelivered"`
	RecentVisitors   []Visitor      `json:"recent_visitors"`
}

// RecordVisit stores a page hit.
func (db *DB) RecordVisit(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, created_at)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, db.now().Unix())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordSectionView stores the first time a page view saw section. Repeats
// for the same session are ignored.
func (db *DB) RecordSectionView(ctx context.Context, sessionID, hashedIP, section string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO section_views (session_id, hashed_ip, section, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, hashedIP, section, db.now().Unix())
	if err != nil {
		return fmt.Errorf("record section view: %w", err)
	}
	return nil
}

// SaveMessage stores a contact submission and returns its id.
func (db *DB) SaveMessage(ctx context.Context, name, email, body string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO messages (name, email, body, created_at)
		VALUES (?, ?, ?, ?)
	`, name, email, body, db.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("save message: %w", err)
	}
	return res.LastInsertId()
}

// MarkDelivered flags a message as sent by mail.
func (db *DB) MarkDelivered(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `UPDATE messages SET delivered = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

// Messages returns the newest contact submissions first.
func (db *DB) Messages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, email, body, delivered, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var ts int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.Delivered, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = time.Unix(ts, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecentVisitors returns the newest hits first.
func (db *DB) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), created_at
		FROM visitors
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	var out []Visitor
	for rows.Next() {
		var v Visitor
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0)
		out = append(out, v)
	}
	return out, rows.Err()
}

// SectionViews counts views per section, in the order given. Sections with no
// views are reported as zero.
func (db *DB) SectionViews(ctx context.Context, sections []string) ([]SectionCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT section, COUNT(*) FROM section_views GROUP BY section
	`)
	if err != nil {
		return nil, fmt.Errorf("query section views: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var section string
		var n int64
		if err := rows.Scan(&section, &n); err != nil {
			return nil, fmt.Errorf("scan section view: %w", err)
		}
		counts[section] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]SectionCount, 0, len(sections))
	for _, s := range sections {
		out = append(out, SectionCount{Section: s, Views: counts[s]})
	}
	return out, nil
}

// Stats gathers the admin dashboard numbers.
func (db *DB) Stats(ctx context.Context, sections []string) (*Stats, error) {
	now := db.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Unix()
	weekAgo := now.Add(-7 * 24 * time.Hour).Unix()

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{midnight}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{weekAgo}},
		{&stats.PageViews, `SELECT COUNT(DISTINCT session_id) FROM section_views`, nil},
		{&stats.Messages, `SELECT COUNT(*) FROM messages`, nil},
		{&stats.Undelivered, `SELECT COUNT(*) FROM messages WHERE delivered = 0`, nil},
	}
	for _, c := range counts {
		if err := db.conn.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.Sections, err = db.SectionViews(ctx, sections); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = db.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

// Cleanup deletes visitor and section rows older than retention and returns
// how many rows went.
func (db *DB) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := db.now().Add(-retention).Unix()

	var total int64
	for _, table := range []string{"visitors", "section_views"} {
		res, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE created_at < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

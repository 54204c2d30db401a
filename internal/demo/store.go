// Package demo embeds a self-contained feed service so the console can be
// tried without a real deployment. Data lives in a local SQLite file.
package demo

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/feedmill/feedadmin/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

// OpenStore opens or creates the demo database at the given path. Use
// ":memory:" for tests.
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// The run simulator writes from its own goroutines.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		config TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS feeds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		source_id INTEGER NOT NULL REFERENCES sources(id),
		tags TEXT NOT NULL DEFAULT '[]',
		interval_minutes INTEGER NOT NULL DEFAULT 60,
		active INTEGER NOT NULL DEFAULT 1,
		last_run_status TEXT NOT NULL DEFAULT '',
		last_run_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS connections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		config TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS exporters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		config TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		items_fetched INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseStamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// --- Sources ---

func scanSource(row interface{ Scan(...any) error }) (models.Source, error) {
	var (
		src       models.Source
		config    string
		createdAt string
	)
	err := row.Scan(&src.ID, &src.Name, &src.Type, &src.URL, &config, &createdAt)
	if err != nil {
		return models.Source{}, err
	}
	_ = json.Unmarshal([]byte(config), &src.Config)
	src.CreatedAt = parseStamp(createdAt)
	return src, nil
}

// ListSources returns all sources ordered by name.
func (s *Store) ListSources() ([]models.Source, error) {
	rows, err := s.conn.Query(`SELECT id, name, type, url, config, created_at
		FROM sources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []models.Source{}
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// GetSource returns one source by id.
func (s *Store) GetSource(id int64) (models.Source, error) {
	row := s.conn.QueryRow(`SELECT id, name, type, url, config, created_at
		FROM sources WHERE id = ?`, id)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Source{}, ErrNotFound
	}
	return src, err
}

// CreateSource inserts a source and returns it with its id.
func (s *Store) CreateSource(src models.Source) (models.Source, error) {
	now := nowStamp()
	res, err := s.conn.Exec(`INSERT INTO sources (name, type, url, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		src.Name, src.Type, src.URL, encodeJSON(src.Config), now, now)
	if err != nil {
		return models.Source{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Source{}, err
	}
	return s.GetSource(id)
}

// UpdateSource overwrites a source's mutable fields.
func (s *Store) UpdateSource(src models.Source) (models.Source, error) {
	res, err := s.conn.Exec(`UPDATE sources SET name = ?, type = ?, url = ?, config = ?, updated_at = ?
		WHERE id = ?`,
		src.Name, src.Type, src.URL, encodeJSON(src.Config), nowStamp(), src.ID)
	if err != nil {
		return models.Source{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Source{}, ErrNotFound
	}
	return s.GetSource(src.ID)
}

// DeleteSource removes a source.
func (s *Store) DeleteSource(id int64) error {
	res, err := s.conn.Exec(`DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Feeds ---

func scanFeed(row interface{ Scan(...any) error }) (models.Feed, error) {
	var (
		feed                 models.Feed
		tags                 string
		active               int
		lastRunStatus        string
		lastRunAt            sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&feed.ID, &feed.Name, &feed.SourceID, &feed.SourceName, &tags,
		&feed.IntervalMinutes, &active, &lastRunStatus, &lastRunAt, &createdAt, &updatedAt)
	if err != nil {
		return models.Feed{}, err
	}
	_ = json.Unmarshal([]byte(tags), &feed.Tags)
	feed.Active = active != 0
	feed.LastRunStatus = models.RunStatus(lastRunStatus)
	if lastRunAt.Valid {
		t := parseStamp(lastRunAt.String)
		feed.LastRunAt = &t
	}
	feed.CreatedAt = parseStamp(createdAt)
	feed.UpdatedAt = parseStamp(updatedAt)
	return feed, nil
}

const feedSelect = `SELECT f.id, f.name, f.source_id, COALESCE(s.name, ''), f.tags,
	f.interval_minutes, f.active, f.last_run_status, f.last_run_at, f.created_at, f.updated_at
	FROM feeds f LEFT JOIN sources s ON s.id = f.source_id`

// ListFeeds returns all feeds with their source name resolved.
func (s *Store) ListFeeds() ([]models.Feed, error) {
	rows, err := s.conn.Query(feedSelect + ` ORDER BY f.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

// GetFeed returns one feed by id.
func (s *Store) GetFeed(id int64) (models.Feed, error) {
	row := s.conn.QueryRow(feedSelect+` WHERE f.id = ?`, id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Feed{}, ErrNotFound
	}
	return feed, err
}

// CreateFeed inserts a feed and returns it with its id.
func (s *Store) CreateFeed(feed models.Feed) (models.Feed, error) {
	now := nowStamp()
	res, err := s.conn.Exec(`INSERT INTO feeds (name, source_id, tags, interval_minutes, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		feed.Name, feed.SourceID, encodeJSON(feed.Tags), feed.IntervalMinutes, boolInt(feed.Active), now, now)
	if err != nil {
		return models.Feed{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Feed{}, err
	}
	return s.GetFeed(id)
}

// UpdateFeed overwrites a feed's mutable fields.
func (s *Store) UpdateFeed(feed models.Feed) (models.Feed, error) {
	res, err := s.conn.Exec(`UPDATE feeds SET name = ?, source_id = ?, tags = ?, interval_minutes = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		feed.Name, feed.SourceID, encodeJSON(feed.Tags), feed.IntervalMinutes, boolInt(feed.Active), nowStamp(), feed.ID)
	if err != nil {
		return models.Feed{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Feed{}, ErrNotFound
	}
	return s.GetFeed(feed.ID)
}

// DeleteFeed removes one feed.
func (s *Store) DeleteFeed(id int64) error {
	res, err := s.conn.Exec(`DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFeeds removes a batch of feeds in one statement.
func (s *Store) DeleteFeeds(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.conn.Exec(`DELETE FROM feeds WHERE id IN (`+placeholders+`)`, args...)
	return err
}

// SetFeedLastRun records the outcome of the most recent run on the feed
// row itself.
func (s *Store) SetFeedLastRun(feedID int64, status models.RunStatus, at time.Time) error {
	_, err := s.conn.Exec(`UPDATE feeds SET last_run_status = ?, last_run_at = ? WHERE id = ?`,
		string(status), at.UTC().Format(time.RFC3339), feedID)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- Tags ---

// ListTags returns all tags ordered by name.
func (s *Store) ListTags() ([]models.Tag, error) {
	rows, err := s.conn.Query(`SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetTag returns one tag by id.
func (s *Store) GetTag(id int64) (models.Tag, error) {
	var tag models.Tag
	err := s.conn.QueryRow(`SELECT id, name, color FROM tags WHERE id = ?`, id).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, ErrNotFound
	}
	return tag, err
}

// CreateTag inserts a tag.
func (s *Store) CreateTag(tag models.Tag) (models.Tag, error) {
	res, err := s.conn.Exec(`INSERT INTO tags (name, color) VALUES (?, ?)`, tag.Name, tag.Color)
	if err != nil {
		return models.Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Tag{}, err
	}
	return s.GetTag(id)
}

// UpdateTag overwrites a tag.
func (s *Store) UpdateTag(tag models.Tag) (models.Tag, error) {
	res, err := s.conn.Exec(`UPDATE tags SET name = ?, color = ? WHERE id = ?`, tag.Name, tag.Color, tag.ID)
	if err != nil {
		return models.Tag{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Tag{}, ErrNotFound
	}
	return s.GetTag(tag.ID)
}

// DeleteTag removes a tag.
func (s *Store) DeleteTag(id int64) error {
	res, err := s.conn.Exec(`DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Connections ---

func scanConnection(row interface{ Scan(...any) error }) (models.Connection, error) {
	var (
		conn      models.Connection
		config    string
		createdAt string
	)
	if err := row.Scan(&conn.ID, &conn.Name, &conn.Type, &config, &createdAt); err != nil {
		return models.Connection{}, err
	}
	_ = json.Unmarshal([]byte(config), &conn.Config)
	conn.CreatedAt = parseStamp(createdAt)
	return conn, nil
}

// ListConnections returns all connections ordered by name.
func (s *Store) ListConnections() ([]models.Connection, error) {
	rows, err := s.conn.Query(`SELECT id, name, type, config, created_at FROM connections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := []models.Connection{}
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

// GetConnection returns one connection by id.
func (s *Store) GetConnection(id int64) (models.Connection, error) {
	row := s.conn.QueryRow(`SELECT id, name, type, config, created_at FROM connections WHERE id = ?`, id)
	conn, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Connection{}, ErrNotFound
	}
	return conn, err
}

// CreateConnection inserts a connection.
func (s *Store) CreateConnection(conn models.Connection) (models.Connection, error) {
	res, err := s.conn.Exec(`INSERT INTO connections (name, type, config, created_at) VALUES (?, ?, ?, ?)`,
		conn.Name, conn.Type, encodeJSON(conn.Config), nowStamp())
	if err != nil {
		return models.Connection{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Connection{}, err
	}
	return s.GetConnection(id)
}

// UpdateConnection overwrites a connection.
func (s *Store) UpdateConnection(conn models.Connection) (models.Connection, error) {
	res, err := s.conn.Exec(`UPDATE connections SET name = ?, type = ?, config = ? WHERE id = ?`,
		conn.Name, conn.Type, encodeJSON(conn.Config), conn.ID)
	if err != nil {
		return models.Connection{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Connection{}, ErrNotFound
	}
	return s.GetConnection(conn.ID)
}

// DeleteConnection removes a connection.
func (s *Store) DeleteConnection(id int64) error {
	res, err := s.conn.Exec(`DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Exporters ---

func scanExporter(row interface{ Scan(...any) error }) (models.Exporter, error) {
	var (
		exp       models.Exporter
		enabled   int
		config    string
		createdAt string
	)
	if err := row.Scan(&exp.ID, &exp.Name, &exp.Type, &enabled, &config, &createdAt); err != nil {
		return models.Exporter{}, err
	}
	exp.Enabled = enabled != 0
	_ = json.Unmarshal([]byte(config), &exp.Config)
	exp.CreatedAt = parseStamp(createdAt)
	return exp, nil
}

// ListExporters returns all exporters ordered by name.
func (s *Store) ListExporters() ([]models.Exporter, error) {
	rows, err := s.conn.Query(`SELECT id, name, type, enabled, config, created_at FROM exporters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exporters := []models.Exporter{}
	for rows.Next() {
		exp, err := scanExporter(rows)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, exp)
	}
	return exporters, rows.Err()
}

// GetExporter returns one exporter by id.
func (s *Store) GetExporter(id int64) (models.Exporter, error) {
	row := s.conn.QueryRow(`SELECT id, name, type, enabled, config, created_at FROM exporters WHERE id = ?`, id)
	exp, err := scanExporter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Exporter{}, ErrNotFound
	}
	return exp, err
}

// CreateExporter inserts an exporter.
func (s *Store) CreateExporter(exp models.Exporter) (models.Exporter, error) {
	res, err := s.conn.Exec(`INSERT INTO exporters (name, type, enabled, config, created_at) VALUES (?, ?, ?, ?, ?)`,
		exp.Name, exp.Type, boolInt(exp.Enabled), encodeJSON(exp.Config), nowStamp())
	if err != nil {
		return models.Exporter{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Exporter{}, err
	}
	return s.GetExporter(id)
}

// UpdateExporter overwrites an exporter.
func (s *Store) UpdateExporter(exp models.Exporter) (models.Exporter, error) {
	res, err := s.conn.Exec(`UPDATE exporters SET name = ?, type = ?, enabled = ?, config = ? WHERE id = ?`,
		exp.Name, exp.Type, boolInt(exp.Enabled), encodeJSON(exp.Config), exp.ID)
	if err != nil {
		return models.Exporter{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Exporter{}, ErrNotFound
	}
	return s.GetExporter(exp.ID)
}

// DeleteExporter removes an exporter.
func (s *Store) DeleteExporter(id int64) error {
	res, err := s.conn.Exec(`DELETE FROM exporters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Runs ---

// CreateRun inserts a run in its initial state.
func (s *Store) CreateRun(run models.Run) error {
	_, err := s.conn.Exec(`INSERT INTO runs (id, feed_id, status, items_fetched, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.FeedID, string(run.Status), run.ItemsFetched, run.Error,
		run.StartedAt.UTC().Format(time.RFC3339))
	return err
}

// GetRun returns one run by id.
func (s *Store) GetRun(id string) (models.Run, error) {
	var (
		run        models.Run
		status     string
		startedAt  string
		finishedAt sql.NullString
	)
	err := s.conn.QueryRow(`SELECT id, feed_id, status, items_fetched, error, started_at, finished_at
		FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.FeedID, &status, &run.ItemsFetched, &run.Error, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, err
	}
	run.Status = models.RunStatus(status)
	run.StartedAt = parseStamp(startedAt)
	if finishedAt.Valid {
		t := parseStamp(finishedAt.String)
		run.FinishedAt = &t
	}
	return run, nil
}

// SetRunStatus advances a run's lifecycle state. Terminal states also set
// the finish time and outcome fields.
func (s *Store) SetRunStatus(id string, status models.RunStatus, itemsFetched int, runErr string) error {
	if status.Terminal() {
		_, err := s.conn.Exec(`UPDATE runs SET status = ?, items_fetched = ?, error = ?, finished_at = ?
			WHERE id = ?`,
			string(status), itemsFetched, runErr, nowStamp(), id)
		return err
	}
	_, err := s.conn.Exec(`UPDATE runs SET status = ? WHERE id = ?`, string(status), id)
	return err
}

package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-convert/internal/logging"
	"media-convert/internal/mediatypes"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Record holds the user-selected knobs for one source file. Zero values mean
// "use the default"; the engine resolves them against the chosen format.
type Record struct {
	FormatID     string  `json:"format_id,omitempty"`
	VideoEncoder string  `json:"video_encoder,omitempty"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	FrameRate    float64 `json:"frame_rate,omitempty"`
	// Bitrate is the selected preset in kbit/s; CustomBitrate is the
	// free-text override, validated only when a conversion starts.
	Bitrate       int    `json:"bitrate,omitempty"`
	CustomBitrate string `json:"custom_bitrate,omitempty"`

	AudioEncoder    string `json:"audio_encoder,omitempty"`
	AudioMode       string `json:"audio_mode,omitempty"`
	AudioSampleRate int    `json:"audio_sample_rate,omitempty"`
	AudioBitrate    int    `json:"audio_bitrate,omitempty"`

	ImageQuality      int  `json:"image_quality,omitempty"`
	ImageCompression  int  `json:"image_compression,omitempty"`
	PreserveAnimation bool `json:"preserve_animation,omitempty"`

	// SpeedFactor scales playback speed for animated outputs.
	SpeedFactor float64 `json:"speed_factor,omitempty"`
}

// Store keeps one path-keyed record map per media kind, mirrored to sqlite.
// All methods are safe for concurrent use.
type Store struct {
	db *sql.DB

	mu        sync.RWMutex
	byKind    map[mediatypes.Kind]map[string]Record
	restoring bool
}

// Open opens (creating if needed) the settings database at dbPath and loads
// all persisted records. The parent directory must already exist.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close settings database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to settings database: %w", err)
	}

	s := &Store{
		db:     db,
		byKind: make(map[mediatypes.Kind]map[string]Record),
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close settings database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize settings schema: %w", err)
	}

	if err := s.load(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close settings database after load failure: %v", closeErr)
		}
		return nil, err
	}

	logging.Info("Settings database ready at %s", dbPath)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		kind TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// load reads every kind's record map. Records for paths no longer in use are
// kept as stored.
func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT kind, payload FROM settings")
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close settings rows: %v", err)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return fmt.Errorf("failed to scan settings row: %w", err)
		}
		records := make(map[string]Record)
		if err := json.Unmarshal([]byte(payload), &records); err != nil {
			logging.Warn("discarding unreadable settings payload for kind %q: %v", kind, err)
			continue
		}
		s.byKind[mediatypes.Kind(kind)] = records
		logging.Debug("restored %d settings records for kind %s", len(records), kind)
	}
	return rows.Err()
}

// Get returns the record stored for the canonical path, if any.
func (s *Store) Get(kind mediatypes.Kind, canonicalPath string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byKind[kind][canonicalPath]
	return rec, ok
}

// BeginRestore marks the store as replaying saved records into the caller's
// controls. Puts issued during a restore are dropped so replayed values do
// not write themselves back.
func (s *Store) BeginRestore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoring = true
}

// EndRestore clears the restore flag set by BeginRestore.
func (s *Store) EndRestore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoring = false
}

// Put upserts the record for the canonical path and rewrites the kind's whole
// map into sqlite. Calls made while records are being restored are dropped to
// avoid write-back loops.
func (s *Store) Put(ctx context.Context, kind mediatypes.Kind, canonicalPath string, rec Record) error {
	s.mu.Lock()
	if s.restoring {
		s.mu.Unlock()
		return nil
	}
	records, ok := s.byKind[kind]
	if !ok {
		records = make(map[string]Record)
		s.byKind[kind] = records
	}
	records[canonicalPath] = rec

	payload, err := json.Marshal(records)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode settings for kind %s: %w", kind, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	_, err = s.db.ExecContext(opCtx,
		"INSERT INTO settings (kind, payload) VALUES (?, ?) ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload",
		string(kind), string(payload))
	if err != nil {
		return fmt.Errorf("failed to persist settings for kind %s: %w", kind, err)
	}
	return nil
}

// Count returns the number of stored records for a kind.
func (s *Store) Count(kind mediatypes.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKind[kind])
}

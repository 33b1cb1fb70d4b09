package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/world"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/world/gen"
)

// ErrNotFound is returned when a heightmap is not in the database.
var ErrNotFound = errors.New("heightmap not found")

// Key identifies one exported heightmap.
type Key struct {
	Seed     int64
	Coord    world.Coord
	Size     float64
	Segments int
}

// Record is a decoded heightmap row.
type Record struct {
	Key
	OriginX, OriginZ float64
	MinHeight        float32
	MaxHeight        float32
	Samples          []float32
}

// At returns sample (i, j), row-major with rows along z.
func (r *Record) At(i, j int) float32 {
	return r.Samples[j*(r.Segments+1)+i]
}

// HeightDB archives heightmaps in SQLite. Samples are stored as
// zstd-compressed little-endian float32 blobs.
type HeightDB struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// OpenHeightDB opens or creates the database at path.
func OpenHeightDB(path string) (*HeightDB, error) {
	if path == "" {
		return nil, fmt.Errorf("open height db: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open height db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS heightmaps (
			seed INTEGER NOT NULL,
			cx INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			size REAL NOT NULL,
			segments INTEGER NOT NULL,
			origin_x REAL NOT NULL,
			origin_z REAL NOT NULL,
			min_height REAL NOT NULL,
			max_height REAL NOT NULL,
			samples BLOB NOT NULL,
			PRIMARY KEY (seed, cx, cz, size, segments)
		);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init height db: %w", err)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &HeightDB{db: db, enc: enc, dec: dec}, nil
}

// Put stores hm under key, replacing any previous row.
func (h *HeightDB) Put(ctx context.Context, key Key, hm *gen.Heightmap) error {
	lo, hi := hm.MinMax()
	blob := h.enc.EncodeAll(encodeFloats(hm.Values()), nil)
	_, err := h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO heightmaps
			(seed, cx, cz, size, segments, origin_x, origin_z, min_height, max_height, samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.Seed, key.Coord.X, key.Coord.Z, key.Size, key.Segments,
		hm.OriginX(), hm.OriginZ(), float64(lo), float64(hi), blob,
	)
	if err != nil {
		return fmt.Errorf("put heightmap %v: %w", key.Coord, err)
	}
	return nil
}

// Get loads the heightmap stored under key.
func (h *HeightDB) Get(ctx context.Context, key Key) (*Record, error) {
	var (
		rec    = Record{Key: key}
		lo, hi float64
		blob   []byte
	)
	err := h.db.QueryRowContext(ctx,
		`SELECT origin_x, origin_z, min_height, max_height, samples FROM heightmaps
		WHERE seed = ? AND cx = ? AND cz = ? AND size = ? AND segments = ?`,
		key.Seed, key.Coord.X, key.Coord.Z, key.Size, key.Segments,
	).Scan(&rec.OriginX, &rec.OriginZ, &lo, &hi, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get heightmap %v: %w", key.Coord, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get heightmap %v: %w", key.Coord, err)
	}

	raw, err := h.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress heightmap %v: %w", key.Coord, err)
	}
	samples, err := decodeFloats(raw)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %v: %w", key.Coord, err)
	}
	if want := (key.Segments + 1) * (key.Segments + 1); len(samples) != want {
		return nil, fmt.Errorf("decode heightmap %v: %d samples, want %d", key.Coord, len(samples), want)
	}
	rec.MinHeight = float32(lo)
	rec.MaxHeight = float32(hi)
	rec.Samples = samples
	return &rec, nil
}

// Count returns the number of stored heightmaps for seed.
func (h *HeightDB) Count(ctx context.Context, seed int64) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM heightmaps WHERE seed = ?`, seed).Scan(&n); err != nil {
		return 0, fmt.Errorf("count heightmaps: %w", err)
	}
	return n, nil
}

// Close releases the database and codecs.
func (h *HeightDB) Close() error {
	h.dec.Close()
	return errors.Join(h.enc.Close(), h.db.Close())
}

func encodeFloats(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

func decodeFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

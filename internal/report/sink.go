package report

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/newthinker/swingscan/internal/core"
	"github.com/newthinker/swingscan/internal/storage/archive"
	"go.uber.org/zap"
)

// HistoryPrefix is the key prefix of dated snapshot copies
const HistoryPrefix = "history"

// SinkConfig configures where snapshots go
type SinkConfig struct {
	Key          string // object key of the latest snapshot
	Header       Header
	ArchiveDaily bool // also write history/YYYY-MM-DD/<Key>
}

// Publication describes a completed publish
type Publication struct {
	Key        string
	ArchiveKey string
	Bytes      int
	Rows       int
}

// Sink hands encoded snapshots to archive storage
type Sink struct {
	store  archive.Storage
	cfg    SinkConfig
	logger *zap.Logger
}

// NewSink creates a sink writing through store
func NewSink(store archive.Storage, cfg SinkConfig, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Header == (Header{}) {
		cfg.Header = HeaderEnglish
	}
	return &Sink{store: store, cfg: cfg, logger: logger}
}

// Publish encodes table and writes it. Storage failures are returned as
// core.ErrStorageFailed; table is left untouched.
func (s *Sink) Publish(ctx context.Context, table []core.TickerSignal, asOf time.Time) (Publication, error) {
	payload, err := Encode(table, s.cfg.Header)
	if err != nil {
		return Publication{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	pub := Publication{Key: s.cfg.Key, Bytes: len(payload), Rows: len(table)}

	if err := s.store.Write(ctx, s.cfg.Key, payload); err != nil {
		s.logger.Error("snapshot upload failed", zap.String("key", s.cfg.Key), zap.Error(err))
		return pub, core.WrapError(core.ErrStorageFailed, fmt.Errorf("%s: %w", s.cfg.Key, err))
	}

	if s.cfg.ArchiveDaily {
		pub.ArchiveKey = HistoryKey(s.cfg.Key, asOf)
		if err := s.store.Write(ctx, pub.ArchiveKey, payload); err != nil {
			s.logger.Error("snapshot archive failed", zap.String("key", pub.ArchiveKey), zap.Error(err))
			return pub, core.WrapError(core.ErrStorageFailed, fmt.Errorf("%s: %w", pub.ArchiveKey, err))
		}
	}

	s.logger.Info("snapshot published",
		zap.String("key", pub.Key),
		zap.String("archive_key", pub.ArchiveKey),
		zap.Int("rows", pub.Rows),
		zap.Int("bytes", pub.Bytes),
	)
	return pub, nil
}

// Latest reads back the most recently published snapshot
func (s *Sink) Latest(ctx context.Context) ([]core.TickerSignal, error) {
	return s.Load(ctx, s.cfg.Key)
}

// Load reads and decodes the snapshot stored at key
func (s *Sink) Load(ctx context.Context, key string) ([]core.TickerSignal, error) {
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no snapshot at %s", key))
	}

	data, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return Decode(data)
}

// History lists archived snapshot keys
func (s *Sink) History(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, HistoryPrefix)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return keys, nil
}

// HistoryKey returns the dated archive key of key
func HistoryKey(key string, asOf time.Time) string {
	return path.Join(HistoryPrefix, asOf.Format(DateLayout), key)
}

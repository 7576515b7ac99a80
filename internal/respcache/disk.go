package respcache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DiskConfig configures the persistent cache tier.
type DiskConfig struct {
	// Dir holds the badger files. Ignored when InMemory is set.
	Dir string

	// Capacity is the ceiling in stored bytes (keys plus values). A write that
	// would cross it empties the tier first. Zero means unbounded.
	Capacity int64

	// InMemory keeps badger off disk; used by tests.
	InMemory bool

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// Logger receives badger's own log lines. Nil silences them.
	Logger *slog.Logger
}

const gcDiscardRatio = 0.5

// DiskStore is the persistent tier, backed by badger.
type DiskStore struct {
	db       *badger.DB
	capacity int64
	logger   *slog.Logger

	// mu serialises writes so used stays in step with the database.
	mu   sync.Mutex
	used int64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// OpenDisk opens (creating if needed) the disk tier.
func OpenDisk(cfg DiskConfig) (*DiskStore, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("cache dir is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1).WithSyncWrites(false)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &DiskStore{
		db:       db,
		capacity: cfg.Capacity,
		logger:   logger,
		stop:     make(chan struct{}),
	}
	if err := d.measure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("measure cache db: %w", err)
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		d.wg.Add(1)
		go d.runGC(cfg.GCInterval)
	}
	return d, nil
}

func (d *DiskStore) Get(key string) ([]byte, bool) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			d.logger.Warn("disk cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

func (d *DiskStore) Set(key string, value []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := []byte(key)
	prev := d.storedSize(k)
	incoming := entrySize(k, int64(len(value)))
	if d.capacity > 0 && d.used-prev+incoming > d.capacity {
		d.logger.Info("disk cache at capacity, dropping all entries", "capacity", d.capacity, "used", d.used)
		if err := d.dropAll(); err != nil {
			d.logger.Warn("disk cache drop failed", "error", err)
			return
		}
		prev = 0
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, value)
	})
	if err != nil {
		d.logger.Warn("disk cache write failed", "key", key, "error", err)
		return
	}
	d.used += incoming - prev
}

func (d *DiskStore) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := []byte(key)
	prev := d.storedSize(k)
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
	if err != nil {
		d.logger.Warn("disk cache delete failed", "key", key, "error", err)
		return
	}
	d.used -= prev
}

// Purge removes every entry.
func (d *DiskStore) Purge() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.dropAll(); err != nil {
		return fmt.Errorf("drop cache entries: %w", err)
	}
	return nil
}

// Used returns the stored bytes counted against Capacity.
func (d *DiskStore) Used() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}

// Close stops GC and closes the database.
func (d *DiskStore) Close() error {
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close cache db: %w", err)
	}
	return nil
}

func (d *DiskStore) dropAll() error {
	if err := d.db.DropAll(); err != nil {
		return err
	}
	d.used = 0
	return nil
}

// measure counts the bytes already stored, reading keys only.
func (d *DiskStore) measure() error {
	var used int64
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			used += entrySize(item.Key(), item.ValueSize())
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.used = used
	return nil
}

// storedSize returns the counted size of key, or zero when it is absent.
func (d *DiskStore) storedSize(key []byte) int64 {
	var size int64
	_ = d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		size = entrySize(item.Key(), item.ValueSize())
		return nil
	})
	return size
}

func entrySize(key []byte, valueSize int64) int64 {
	return int64(len(key)) + valueSize
}

func (d *DiskStore) runGC(interval time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			for d.db.RunValueLogGC(gcDiscardRatio) == nil {
			}
		}
	}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

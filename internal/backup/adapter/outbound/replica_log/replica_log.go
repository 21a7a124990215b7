package replica_log

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/anthanhphan/go-ramstore/internal/backup/config"
	"github.com/anthanhphan/go-ramstore/internal/backup/domain"
	"github.com/anthanhphan/go-ramstore/internal/backup/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	LogFileName = "replicas.log"

	// maxFrameSize bounds a single replica frame during replay.
	maxFrameSize = 256 * 1024 * 1024
)

// LogAdapter keeps every replica in an in-memory index and appends each write
// to a single log file. The log is replayed on startup.
type LogAdapter struct {
	indexMu sync.RWMutex
	fileMu  sync.Mutex
	dirPath string
	file    *os.File
	fsync   bool
	index   map[domain.ReplicaKey]domain.Replica
	// stale counts frames superseded by a later write of the same key.
	stale int
}

var _ port.ReplicaRepository = (*LogAdapter)(nil)

// NewLogAdapter opens the replica log in cfg.DataDir, or keeps replicas in
// memory only when DataDir is empty.
func NewLogAdapter(cfg config.StorageConfig) (*LogAdapter, error) {
	a := &LogAdapter{
		index: make(map[domain.ReplicaKey]domain.Replica),
		fsync: cfg.FSync,
	}
	if cfg.DataDir == "" {
		return a, nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	a.dirPath = filepath.Clean(cfg.DataDir)

	if err := a.replay(); err != nil {
		return nil, fmt.Errorf("failed to replay replica log: %w", err)
	}
	if a.stale > len(a.index) {
		if err := a.compact(); err != nil {
			return nil, fmt.Errorf("failed to compact replica log: %w", err)
		}
	}
	return a, a.openFile()
}

func (a *LogAdapter) logPath() string {
	return filepath.Join(a.dirPath, LogFileName)
}

func (a *LogAdapter) openFile() error {
	// G304: path is built from the configured data dir
	file, err := os.OpenFile(a.logPath(), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304
	if err != nil {
		return err
	}
	a.file = file
	return nil
}

// replay rebuilds the index from the log, truncating a partially written tail.
func (a *LogAdapter) replay() error {
	file, err := os.OpenFile(a.logPath(), os.O_RDWR, 0600) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	reader := bufio.NewReader(file)
	offset := int64(0)
	truncated := false

	for {
		r, size, err := readFrame(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			truncated = true
			logger.Warnw("Stopping replay at damaged frame", "offset", offset, "error", err.Error())
			break
		}

		if _, ok := a.index[r.Key()]; ok {
			a.stale++
		}
		a.index[r.Key()] = r
		offset += size
	}

	if truncated {
		if err := file.Truncate(offset); err != nil {
			return fmt.Errorf("failed to truncate partial replica log: %w", err)
		}
		logger.Warnw("Truncated partial replica log tail during replay", "valid_bytes", offset)
	}

	logger.Infow("Replica log replayed", "replicas", len(a.index), "stale_frames", a.stale)
	return nil
}

// compact rewrites the log with only the live replicas.
func (a *LogAdapter) compact() error {
	tmpPath := a.logPath() + ".compact"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, key := range sortedKeys(a.index) {
		if err := writeFrame(w, a.index[key]); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, a.logPath()); err != nil {
		return err
	}

	logger.Infow("Replica log compacted", "dropped_frames", a.stale)
	a.stale = 0
	return nil
}

func (a *LogAdapter) Put(_ context.Context, r domain.Replica) error {
	// fileMu orders log frames and index updates the same way.
	a.fileMu.Lock()
	defer a.fileMu.Unlock()

	if a.file != nil {
		err := writeFrame(a.file, r)
		if err == nil && a.fsync {
			err = a.file.Sync()
		}
		if err != nil {
			return fmt.Errorf("failed to append replica %s: %w", r.Key(), err)
		}
	}

	a.indexMu.Lock()
	defer a.indexMu.Unlock()
	if _, ok := a.index[r.Key()]; ok {
		a.stale++
	}
	a.index[r.Key()] = r

	if a.file != nil && a.stale > len(a.index) {
		if err := a.rotate(); err != nil {
			logger.Errorw("Failed to compact replica log", "stale_frames", a.stale, "error", err.Error())
		}
	}
	return nil
}

// rotate compacts the open log. Callers hold fileMu and indexMu.
func (a *LogAdapter) rotate() error {
	if err := a.file.Close(); err != nil {
		return err
	}
	a.file = nil
	compactErr := a.compact()
	// On a failed compaction the original log is still in place.
	if err := a.openFile(); err != nil {
		return errors.Join(compactErr, err)
	}
	return compactErr
}

func (a *LogAdapter) Get(_ context.Context, key domain.ReplicaKey) (domain.Replica, error) {
	a.indexMu.RLock()
	defer a.indexMu.RUnlock()
	r, ok := a.index[key]
	if !ok {
		return domain.Replica{}, fmt.Errorf("%w: %s", domain.ErrReplicaNotFound, key)
	}
	return r, nil
}

func (a *LogAdapter) List(_ context.Context, master cluster.NodeIdentity) ([]domain.Replica, error) {
	a.indexMu.RLock()
	defer a.indexMu.RUnlock()

	var out []domain.Replica
	for key, r := range a.index {
		if key.Master == master {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentID < out[j].SegmentID })
	return out, nil
}

func (a *LogAdapter) Close() error {
	a.fileMu.Lock()
	defer a.fileMu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// Frame layout: 4-byte payload length, JSON payload, 4-byte CRC32 of the payload.
func writeFrame(w io.Writer, r domain.Replica) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	buf := make([]byte, 4+len(payload)+4)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload))) // #nosec G115
	copy(buf[4:], payload)
	binary.BigEndian.PutUint32(buf[4+len(payload):], crc32.ChecksumIEEE(payload))
	_, err = w.Write(buf)
	return err
}

func readFrame(r io.Reader) (domain.Replica, int64, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return domain.Replica{}, 0, io.EOF
		}
		return domain.Replica{}, 0, fmt.Errorf("failed to read frame length: %w", err)
	}
	size := binary.BigEndian.Uint32(header)
	if size == 0 || size > maxFrameSize {
		return domain.Replica{}, 0, fmt.Errorf("bad frame length %d", size)
	}

	body := make([]byte, int(size)+4)
	if _, err := io.ReadFull(r, body); err != nil {
		return domain.Replica{}, 0, fmt.Errorf("failed to read frame: %w", err)
	}
	payload := body[:size]
	if crc32.ChecksumIEEE(payload) != binary.BigEndian.Uint32(body[size:]) {
		return domain.Replica{}, 0, errors.New("frame checksum mismatch")
	}

	var rep domain.Replica
	if err := json.Unmarshal(payload, &rep); err != nil {
		return domain.Replica{}, 0, fmt.Errorf("failed to decode frame: %w", err)
	}
	return rep, int64(4 + len(body)), nil
}

func sortedKeys(index map[domain.ReplicaKey]domain.Replica) []domain.ReplicaKey {
	keys := make([]domain.ReplicaKey, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Master.ID != b.Master.ID {
			return a.Master.ID < b.Master.ID
		}
		if a.Master.Generation != b.Master.Generation {
			return a.Master.Generation < b.Master.Generation
		}
		return a.SegmentID < b.SegmentID
	})
	return keys
}

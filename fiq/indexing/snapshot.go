package indexing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Snapshot format (little-endian):
// [magic 'FIQX'] [u32 version] [i64 builtUnix] [u32 len][key]
// [u32 n] n*([u32 len][name])
// [u32 t] t*([3]trigram [u32 count] count*u32)   trigrams ascending
// [u64 xxhash of everything above]
const (
	snapshotMagic   = "FIQX"
	SnapshotVersion = uint32(1)

	checksumSize = 8
)

// DiskCache persists IndexStores, one file per directory key, under Root.
type DiskCache struct {
	Root string
	TTL  time.Duration
	Now  func() time.Time
}

// NewDiskCache returns a DiskCache using the wall clock.
func NewDiskCache(root string, ttl time.Duration) *DiskCache {
	return &DiskCache{Root: root, TTL: ttl, Now: time.Now}
}

// Path is the cache file for key.
func (d *DiskCache) Path(key string) string {
	return filepath.Join(d.Root, cacheFileName(key))
}

// Save writes store atomically: readers see the old file or the new one, never a mix.
func (d *DiskCache) Save(store *IndexStore) error {
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return fmt.Errorf("%w: create cache dir %s: %w", ErrPersistence, d.Root, err)
	}

	final := d.Path(store.Key)
	tmp := fmt.Sprintf("%s.%s.tmp", final, uuid.NewString())

	if err := writeFileSync(tmp, EncodeSnapshot(store)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %w", ErrPersistence, final, err)
	}
	return nil
}

// Load reads the store for key. It returns ErrNotFound, ErrCorrupt or
// ErrExpired; an expired file is left in place for the next save to replace.
func (d *DiskCache) Load(key string) (*IndexStore, error) {
	data, err := os.ReadFile(d.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	store, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	if store.Key != key {
		return nil, fmt.Errorf("%w: file belongs to %q", ErrCorrupt, store.Key)
	}
	if !d.now().Before(store.ExpiresAt(d.TTL)) {
		return nil, ErrExpired
	}
	return store, nil
}

// Remove deletes the cache file for key. A missing file is not an error.
func (d *DiskCache) Remove(key string) error {
	err := os.Remove(d.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Keys lists the directory keys of the cache files under Root, read from
// each file header. Files that are not snapshots, or whose name does not
// match their key, are skipped. A missing Root has no keys.
func (d *DiskCache) Keys() ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	var keys []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".idx") {
			continue
		}
		key, err := readSnapshotKey(filepath.Join(d.Root, e.Name()))
		if err != nil || cacheFileName(key) != e.Name() {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// readSnapshotKey reads only the header of the snapshot at path.
func readSnapshotKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hdr := make([]byte, len(snapshotMagic)+4+8+4)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if string(hdr[:len(snapshotMagic)]) != snapshotMagic {
		return "", fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	n := binary.LittleEndian.Uint32(hdr[len(hdr)-4:])
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if int64(n) > info.Size() {
		return "", fmt.Errorf("%w: key length exceeds file", ErrCorrupt)
	}
	key := make([]byte, n)
	if _, err := io.ReadFull(f, key); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return string(key), nil
}

func (d *DiskCache) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeSnapshot serializes store. Output is deterministic for equal stores.
func EncodeSnapshot(store *IndexStore) []byte {
	size := 4 + 4 + 8 + 4 + len(store.Key) + 4 + 4 + checksumSize
	for _, n := range store.Names {
		size += 4 + len(n)
	}
	buf := make([]byte, 0, size)

	le := binary.LittleEndian
	buf = append(buf, snapshotMagic...)
	buf = le.AppendUint32(buf, SnapshotVersion)
	buf = le.AppendUint64(buf, uint64(store.BuiltAt.Unix()))
	buf = appendString(buf, store.Key)

	buf = le.AppendUint32(buf, uint32(len(store.Names)))
	for _, n := range store.Names {
		buf = appendString(buf, n)
	}

	trigrams := store.Trigrams()
	buf = le.AppendUint32(buf, uint32(len(trigrams)))
	for _, t := range trigrams {
		bm := store.postings[t]
		buf = append(buf, t[:]...)
		buf = le.AppendUint32(buf, uint32(bm.GetCardinality()))
		it := bm.Iterator()
		for it.HasNext() {
			buf = le.AppendUint32(buf, it.Next())
		}
	}

	return le.AppendUint64(buf, xxhash.Sum64(buf))
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// DecodeSnapshot parses data produced by EncodeSnapshot. Any structural
// problem, including an unknown version, is reported as ErrCorrupt.
func DecodeSnapshot(data []byte) (*IndexStore, error) {
	if len(data) < len(snapshotMagic)+4+checksumSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	body, sum := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if xxhash.Sum64(body) != binary.LittleEndian.Uint64(sum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	r := &snapshotReader{buf: body}
	if string(r.bytes(len(snapshotMagic))) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if v := r.u32(); r.err == nil && v != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorrupt, v)
	}
	built := int64(r.u64())
	store := &IndexStore{
		Key:     r.str(),
		BuiltAt: time.Unix(built, 0),
	}

	n := r.count(4)
	store.Names = make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		store.Names = append(store.Names, r.str())
	}

	t := r.count(3 + 4)
	store.postings = make(map[Trigram]*roaring.Bitmap, t)
	var prev Trigram
	for i := 0; i < t && r.err == nil; i++ {
		var tri Trigram
		copy(tri[:], r.bytes(3))
		if i > 0 && !prev.Less(tri) {
			r.fail("trigrams out of order")
			break
		}
		prev = tri

		cnt := r.count(4)
		if cnt == 0 && r.err == nil {
			r.fail("empty posting list")
			break
		}
		ids := make([]uint32, 0, cnt)
		for j := 0; j < cnt && r.err == nil; j++ {
			id := r.u32()
			if int(id) >= n || (j > 0 && id <= ids[j-1]) {
				r.fail("posting index out of range or unsorted")
				break
			}
			ids = append(ids, id)
		}
		store.postings[tri] = roaring.BitmapOf(ids...)
	}

	if r.err == nil && r.off != len(r.buf) {
		r.fail("trailing bytes")
	}
	if r.err != nil {
		return nil, r.err
	}
	return store, nil
}

type snapshotReader struct {
	buf []byte
	off int
	err error
}

func (r *snapshotReader) fail(msg string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s at offset %d", ErrCorrupt, msg, r.off)
	}
}

func (r *snapshotReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.fail("unexpected end of data")
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *snapshotReader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *snapshotReader) u64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *snapshotReader) str() string {
	n := r.u32()
	return string(r.bytes(int(n)))
}

// count reads an element count and rejects values the remaining bytes
// cannot hold at minSize bytes per element.
func (r *snapshotReader) count(minSize int) int {
	n := int(r.u32())
	if r.err != nil {
		return 0
	}
	if n > (len(r.buf)-r.off)/minSize {
		r.fail("element count exceeds data")
		return 0
	}
	return n
}

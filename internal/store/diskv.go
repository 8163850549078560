package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/peterbourgon/diskv/v3"
)

// Lock files and in-flight writes live in dot directories next to the kind
// directories, so they never match a "<kind>:" key prefix.
const (
	diskvLockDir = ".locks"
	diskvTempDir = ".tmp"
)

// DiskvCollections keeps day-scoped collections as one file per (kind, day)
// under basePath/<kind>/<day>. It satisfies the same contract as
// Store.GetCollection and Store.PutCollection.
//
// Several processes may share basePath. Reads always hit the disk, writes
// land by rename, and PutCollection holds an advisory lock on
// basePath/.locks/<kind>.lock for its whole read-compare-write.
type DiskvCollections struct {
	d    *diskv.Diskv
	base string
	mu   sync.Mutex
}

type envelope struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func NewDiskvCollections(basePath string) *DiskvCollections {
	return &DiskvCollections{
		base: basePath,
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Join(basePath, diskvTempDir),
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      0, // another process may have written since
		}),
	}
}

// lock takes the cross-process lock for kind. The returned func releases it.
func (c *DiskvCollections) lock(kind string) (func(), error) {
	dir := filepath.Join(c.base, diskvLockDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, kind+".lock"))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", kind, err)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (c *DiskvCollections) GetCollection(kind, day string) (Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read(kind, day)
}

func (c *DiskvCollections) PutCollection(kind, day string, data []byte, expect int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	unlock, err := c.lock(kind)
	if err != nil {
		return 0, err
	}
	defer unlock()

	cur, err := c.read(kind, day)
	if err != nil {
		return 0, err
	}
	if cur.Version != expect {
		return 0, fmt.Errorf("put collection %s/%s at version %d: %w", kind, day, expect, ErrVersionConflict)
	}
	raw, err := json.Marshal(envelope{Version: expect + 1, Data: json.RawMessage(data)})
	if err != nil {
		return 0, fmt.Errorf("encode collection %s/%s: %w", kind, day, err)
	}
	if err := c.d.Write(toKey(kind, day), raw); err != nil {
		return 0, fmt.Errorf("write collection %s/%s: %w", kind, day, err)
	}
	return expect + 1, nil
}

// CollectionDays lists the days with a stored collection of kind, oldest first.
func (c *DiskvCollections) CollectionDays(kind string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var days []string
	for key := range c.d.KeysPrefix(kind+":", nil) {
		pk := keyToPathTransform(key)
		days = append(days, pk.FileName)
	}
	sort.Strings(days)
	return days, nil
}

func (c *DiskvCollections) read(kind, day string) (Collection, error) {
	key := toKey(kind, day)
	if !c.d.Has(key) {
		return Collection{}, nil
	}
	raw, err := c.d.Read(key)
	if err != nil {
		return Collection{}, fmt.Errorf("read collection %s/%s: %w", kind, day, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Collection{}, fmt.Errorf("decode collection %s/%s: %w", kind, day, err)
	}
	return Collection{Data: []byte(env.Data), Version: env.Version}, nil
}

func toKey(kind, day string) string {
	return kind + ":" + day
}

func keyToPathTransform(key string) *diskv.PathKey {
	kind, day, _ := strings.Cut(key, ":")
	return &diskv.PathKey{
		Path:     []string{kind},
		FileName: day,
	}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	return fmt.Sprintf("%s:%s", strings.Join(pk.Path, "-"), pk.FileName)
}

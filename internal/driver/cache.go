package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

const cacheIndexVersion = 1

// extractorVersion is bumped whenever the extractor's output shape or
// semantics change, so a code change invalidates every cached entry even
// if file content hashes happen to still match.
const extractorVersion = "vracer-extractor-v1"

type cacheEntry struct {
	ContentHash      string `json:"content_hash"`
	FactsPath        string `json:"facts_path"`
	ExtractorVersion string `json:"extractor_version"`
}

type cacheIndex struct {
	Version int                    `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

// Cache is a content-hash-keyed, on-disk store of per-file extraction
// results, so re-running VRacer over an unchanged file skips re-lexing and
// re-parsing it.
type Cache struct {
	dir   string
	mu    sync.Mutex
	index cacheIndex
}

// NewCache builds a Cache rooted at dir. Call Load before Get/Put and Save
// once all files for this run have been processed.
func NewCache(dir string) *Cache {
	return &Cache{
		dir: dir,
		index: cacheIndex{
			Version: cacheIndexVersion,
			Entries: make(map[string]cacheEntry),
		},
	}
}

func (c *Cache) indexPath() string  { return filepath.Join(c.dir, "index.json") }
func (c *Cache) resultsDir() string { return filepath.Join(c.dir, "results") }

func (c *Cache) resultPathForFile(filePath string) string {
	h := sha256.Sum256([]byte(filePath))
	return filepath.Join(c.resultsDir(), hex.EncodeToString(h[:])+".json")
}

// Load reads the on-disk index, creating the cache directory if absent. A
// missing index is not an error (first run); a version mismatch resets the
// index rather than fail the run.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}
	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parse cache index: %w", err)
	}
	if idx.Version != cacheIndexVersion {
		c.index = cacheIndex{Version: cacheIndexVersion, Entries: make(map[string]cacheEntry)}
		return nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]cacheEntry)
	}
	c.index = idx
	return nil
}

// Save persists the index to disk.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeJSONAtomic(c.indexPath(), c.index)
}

// Get returns the cached FileResult for filePath if its content hash and
// the extractor version both still match.
func (c *Cache) Get(filePath, contentHash string) (ir.FileResult, bool, error) {
	c.mu.Lock()
	entry, ok := c.index.Entries[filePath]
	c.mu.Unlock()
	if !ok || entry.ContentHash != contentHash || entry.ExtractorVersion != extractorVersion {
		return ir.FileResult{}, false, nil
	}

	data, err := os.ReadFile(entry.FactsPath)
	if err != nil {
		return ir.FileResult{}, false, fmt.Errorf("read cached result: %w", err)
	}
	var result ir.FileResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ir.FileResult{}, false, fmt.Errorf("parse cached result: %w", err)
	}
	return result, true, nil
}

// Put stores result under filePath's content hash for future runs.
func (c *Cache) Put(filePath, contentHash string, result ir.FileResult) error {
	resultPath := c.resultPathForFile(filePath)
	if err := writeJSONAtomic(resultPath, result); err != nil {
		return err
	}

	c.mu.Lock()
	c.index.Entries[filePath] = cacheEntry{
		ContentHash:      contentHash,
		FactsPath:        resultPath,
		ExtractorVersion: extractorVersion,
	}
	c.mu.Unlock()
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

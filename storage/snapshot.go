package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"booking-scraper/models"
)

const snapshotTimeLayout = "2006-01-02-15.04.05"

// snapshotSchema describes the page/listing nesting of a snapshot file.
const snapshotSchema = `{
	"type": "array",
	"items": {
		"type": "array",
		"items": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name":   {"type": "string"},
				"rating": {"type": "string"},
				"price":  {"type": ["string", "null"]},
				"image":  {"type": ["string", "null"]},
				"link":   {"type": ["string", "null"]},
				"details": {
					"type": "object",
					"properties": {
						"coordinates": {
							"type": ["object", "null"],
							"properties": {
								"latitude":  {"type": ["string", "null"]},
								"longitude": {"type": ["string", "null"]}
							}
						},
						"important_facilities":    {"type": ["array", "null"], "items": {"type": "string"}},
						"neighborhood_structures": {"type": ["array", "null"], "items": {"type": "string"}},
						"services_offered":        {"type": ["array", "null"], "items": {"type": "string"}}
					}
				}
			}
		}
	}
}`

var compiledSnapshotSchema = jsonschema.MustCompileString("snapshot.schema.json", snapshotSchema)

// ErrNoSnapshot is returned when a directory holds no JSON files.
var ErrNoSnapshot = errors.New("storage: no snapshot files found")

// SnapshotWriter writes the full crawl state to a new timestamped JSON file
// on every Save.
type SnapshotWriter struct {
	dir string
	now func() time.Time
}

// NewSnapshotWriter creates the output directory if needed.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	return &SnapshotWriter{dir: dir, now: time.Now}, nil
}

// Save writes result to booking_<destination>_<timestamp>.json and returns
// the path. Existing files are never replaced: a numeric suffix is added
// when two saves land in the same second.
func (w *SnapshotWriter) Save(destination string, result models.CrawlResult) (string, error) {
	if result == nil {
		result = models.CrawlResult{}
	}

	data, err := encodeSnapshot(result)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("booking_%s_%s", destination, w.now().Format(snapshotTimeLayout))
	for n := 0; ; n++ {
		name := base + ".json"
		if n > 0 {
			name = fmt.Sprintf("%s-%d.json", base, n)
		}
		path := filepath.Join(w.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("snapshot: create %q: %w", path, err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("snapshot: write %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("snapshot: close %q: %w", path, err)
		}
		return path, nil
	}
}

func encodeSnapshot(result models.CrawlResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadSnapshot reads and validates a snapshot file.
func LoadSnapshot(path string) (models.CrawlResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %q: %w", path, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: parse %q: %w", path, err)
	}
	if err := compiledSnapshotSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("snapshot: %q is not a crawl result: %w", path, err)
	}

	var result models.CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("snapshot: decode %q: %w", path, err)
	}
	if result == nil {
		result = models.CrawlResult{}
	}
	return result, nil
}

// LatestSnapshot returns the most recently modified *.json file in dir.
func LatestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("snapshot: list %q: %w", dir, err)
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) ||
			(info.ModTime().Equal(latestMod) && e.Name() > filepath.Base(latest)) {
			latest = filepath.Join(dir, e.Name())
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", ErrNoSnapshot
	}
	return latest, nil
}

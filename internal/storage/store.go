package storage

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/physarum/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Profile       string             `json:"profile"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	Width         int                `json:"width"`
	Height        int                `json:"height"`
	Agents        int                `json:"agents"`
	AgentFraction float64            `json:"agent_fraction"`
	Steps         int                `json:"steps"`
	Backend       string             `json:"backend"`
	Params        map[string]float64 `json:"params"`
	Frames        int                `json:"frames"`
	Final         metrics.Stats      `json:"final"`
	Wavelength    float64            `json:"wavelength"`
}

// NewRunID returns a fresh directory name for a run of profile.
func (s *Store) NewRunID(profile string) string {
	return fmt.Sprintf("%s_%d", profile, time.Now().UnixNano())
}

// Dir returns the directory of run id.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// Save writes metadata.json and stats.csv for meta.ID, creating the run
// directory if needed. An empty ID is assigned from the profile.
func (s *Store) Save(meta RunMetadata, stats []metrics.Stats) (string, error) {
	if meta.ID == "" {
		meta.ID = s.NewRunID(meta.Profile)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := s.Dir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if stats == nil {
		stats = []metrics.Stats{}
	}
	if err := gocsv.MarshalFile(&stats, csvFile); err != nil {
		return "", fmt.Errorf("write stats: %w", err)
	}

	return meta.ID, nil
}

// SaveFrame writes img as frame_<step>.png in the run directory.
func (s *Store) SaveFrame(runID string, step int, img image.Image) (string, error) {
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(runDir, fmt.Sprintf("frame_%05d.png", step))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode frame %d: %w", step, err)
	}
	return path, nil
}

// List returns the stored runs, oldest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadStats(runID string) ([]metrics.Stats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stats := []metrics.Stats{}
	if err := gocsv.UnmarshalFile(file, &stats); err != nil {
		if err == gocsv.ErrEmptyCSVFile {
			return stats, nil
		}
		return nil, fmt.Errorf("read stats: %w", err)
	}
	return stats, nil
}

// ExportData is the JSON form of a stored run.
type ExportData struct {
	Run   RunMetadata     `json:"run"`
	Stats []metrics.Stats `json:"stats"`
}

// Export writes a run's metadata and stats to w as indented JSON.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	stats, err := s.LoadStats(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Stats: stats})
}

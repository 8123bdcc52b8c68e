package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Record is the metadata kept for one emulator state snapshot. The state
// itself lives inside the emulator; this file only tracks what was taken and
// when.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Services  []string  `json:"services,omitempty"`
}

var ErrNotFound = errors.New("snapshot not found")

// Manager persists snapshot metadata as a JSON file next to the server.
type Manager interface {
	Add(name string, services []string) (Record, error)
	List() ([]Record, error)
	Get(id string) (Record, error)
	StateFilePath() string
}

type fileManager struct {
	filePath string
	mu       sync.RWMutex
}

func NewManager(filePath string) Manager {
	return &fileManager{filePath: filePath}
}

func (m *fileManager) Add(name string, services []string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.load()
	if err != nil {
		return Record{}, err
	}

	record := Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Services:  services,
	}
	records[record.ID] = record

	if err := m.save(records); err != nil {
		return Record{}, err
	}
	log.Debug().Str("id", record.ID).Str("name", name).Msg("Recorded snapshot")
	return record, nil
}

// List returns all records ordered newest first.
func (m *fileManager) List() ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, err := m.load()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *fileManager) Get(id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, err := m.load()
	if err != nil {
		return Record{}, err
	}
	record, ok := records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (m *fileManager) StateFilePath() string {
	return m.filePath
}

func (m *fileManager) load() (map[string]Record, error) {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Record), nil
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read snapshot state file")
		return nil, err
	}
	if len(data) == 0 {
		return make(map[string]Record), nil
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to unmarshal snapshot state file")
		return nil, err
	}
	return records, nil
}

// save writes through a temp file and renames it over the target so a crash
// mid-write never leaves a truncated state file.
func (m *fileManager) save(records map[string]Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tempFilePath := m.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary snapshot state file")
		return err
	}
	if err := os.Rename(tempFilePath, m.filePath); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename snapshot state file")
		_ = os.Remove(tempFilePath)
		return err
	}
	return nil
}

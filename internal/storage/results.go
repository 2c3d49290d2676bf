package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/maltedev/keepa-arbitrage/internal/models"
)

// ResultFileName is the results file name for a search keyword.
func ResultFileName(keyword string) string {
	return fmt.Sprintf("selected_products_%s.json", keyword)
}

// ResultStore keeps the selected products of the latest run in one JSON
// file. Every Save replaces the file; nothing is merged across runs.
type ResultStore struct {
	mu       sync.Mutex
	filename string
}

func NewResultStore(dir, keyword string) *ResultStore {
	return &ResultStore{
		filename: filepath.Join(dir, ResultFileName(keyword)),
	}
}

func (s *ResultStore) Path() string {
	return s.filename
}

func (s *ResultStore) Save(records []models.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []models.ProductRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	// Write to temp file first for atomicity
	tmpFile := s.filename + ".tmp"
	if err := os.WriteFile(tmpFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if err := os.Rename(tmpFile, s.filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to replace results file: %w", err)
	}

	return nil
}

func (s *ResultStore) Load() ([]models.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filename)
	if err != nil {
		return nil, err
	}

	var records []models.ProductRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	return records, nil
}

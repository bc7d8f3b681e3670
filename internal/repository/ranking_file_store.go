package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ai-power-rankings/internal/entity"
)

// CurrentRankingsFile is the file name holding the current period.
const CurrentRankingsFile = "rankings.json"

// RankingFileStore persists ranking periods as JSON files, one file per period.
type RankingFileStore struct {
	dir string
}

// NewRankingFileStore creates a store rooted at dir.
func NewRankingFileStore(dir string) *RankingFileStore {
	return &RankingFileStore{dir: dir}
}

// Dir returns the directory the store writes to.
func (s *RankingFileStore) Dir() string {
	return s.dir
}

// Write stores a period as <period>.json and returns the written path.
func (s *RankingFileStore) Write(ranking *entity.RankingPeriod) (string, error) {
	if ranking.Period == "" {
		return "", errors.New("ranking period is empty")
	}
	path := filepath.Join(s.dir, ranking.Period+".json")
	if err := s.writeFile(path, ranking); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCurrent stores a period as the current rankings file.
func (s *RankingFileStore) WriteCurrent(ranking *entity.RankingPeriod) (string, error) {
	path := filepath.Join(s.dir, CurrentRankingsFile)
	if err := s.writeFile(path, ranking); err != nil {
		return "", err
	}
	return path, nil
}

// Read loads the period stored as <period>.json.
func (s *RankingFileStore) Read(period string) (*entity.RankingPeriod, error) {
	return ReadRankingFile(filepath.Join(s.dir, period+".json"))
}

// ListPeriods returns the stored periods, newest first.
func (s *RankingFileStore) ListPeriods() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list ranking files: %w", err)
	}
	var periods []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == CurrentRankingsFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		periods = append(periods, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	return periods, nil
}

// ReadRankingFile loads a ranking period from any JSON file.
func ReadRankingFile(path string) (*entity.RankingPeriod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read ranking file: %w", err)
	}
	var ranking entity.RankingPeriod
	if err := json.Unmarshal(data, &ranking); err != nil {
		return nil, fmt.Errorf("failed to decode ranking file %s: %w", path, err)
	}
	if ranking.Period == "" {
		return nil, fmt.Errorf("ranking file %s has no period", path)
	}
	return &ranking, nil
}

func (s *RankingFileStore) writeFile(path string, ranking *entity.RankingPeriod) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ranking directory: %w", err)
	}
	data, err := json.MarshalIndent(ranking, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ranking period: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ranking file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace ranking file: %w", err)
	}
	return nil
}

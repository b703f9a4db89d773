package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fitplanner/internal/plan"
)

// PlanStore provides file-based storage for recovered weekly plans. Each
// save writes a new timestamped version so a bad regeneration never
// overwrites a good plan.
type PlanStore struct {
	basePath string
}

// NewPlanStore creates a new PlanStore and ensures the base directory exists.
func NewPlanStore(basePath string) (*PlanStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &PlanStore{basePath: basePath}, nil
}

// sanitizeID makes a plan ID safe for filenames.
func sanitizeID(id string) string {
	id = strings.ReplaceAll(id, ":", "-")
	return strings.ReplaceAll(id, string(os.PathSeparator), "-")
}

// versionedPath returns the full path for a given plan ID and timestamp.
func (s *PlanStore) versionedPath(planID string, savedAt time.Time) string {
	filename := fmt.Sprintf("%s_%s.json", sanitizeID(planID), savedAt.UTC().Format("20060102T150405"))
	return filepath.Join(s.basePath, filename)
}

// Save stores a weekly plan to a new versioned file and returns its path.
func (s *PlanStore) Save(p *plan.WeeklyPlan) (string, error) {
	if p == nil {
		return "", fmt.Errorf("cannot save a nil plan")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	filePath := s.versionedPath(p.ID, time.Now())
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	return filePath, nil
}

// Load retrieves the most recent version of a plan by ID.
func (s *PlanStore) Load(planID string) (*plan.WeeklyPlan, error) {
	versions, err := s.versions(planID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no stored versions for plan %s", planID)
	}

	data, err := os.ReadFile(versions[len(versions)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p plan.WeeklyPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &p, nil
}

// Exists checks whether any version of a plan is stored.
func (s *PlanStore) Exists(planID string) bool {
	versions, err := s.versions(planID)
	return err == nil && len(versions) > 0
}

// RemoveStaleVersions removes all but the latest version of a plan.
func (s *PlanStore) RemoveStaleVersions(planID string) error {
	versions, err := s.versions(planID)
	if err != nil {
		return err
	}
	if len(versions) <= 1 {
		return nil
	}
	for _, stale := range versions[:len(versions)-1] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", stale, err)
		}
	}
	return nil
}

// versions lists all version files for a plan, oldest first. The timestamp
// format sorts lexicographically.
func (s *PlanStore) versions(planID string) ([]string, error) {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", sanitizeID(planID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob plan files: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

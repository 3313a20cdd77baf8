// Package session persists a brick search session: which set is being
// searched and how many of each part have been found so far.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brick-finder/internal/inventory"
)

// File represents a saved search session (.bricksession).
type File struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	SetName   string `json:"set_name"`
	SetNumber string `json:"set_number"`

	// SetPath is the inventory CSV, relative to the session file.
	SetPath string `json:"set_path,omitempty"`

	Bricks []inventory.Brick `json:"bricks"`
}

// New creates a session snapshot of the given set.
func New(set *inventory.Set) *File {
	now := time.Now()
	return &File{
		Version:   1,
		Created:   now,
		Modified:  now,
		SetName:   set.Name,
		SetNumber: set.SetNumber,
		Bricks:    set.Bricks(),
	}
}

// Load reads a session from a file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return &f, nil
}

// Save writes the session to a file, refreshing the modified timestamp.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Update replaces the stored progress with the set's current state.
func (f *File) Update(set *inventory.Set) {
	f.SetName = set.Name
	f.SetNumber = set.SetNumber
	f.Bricks = set.Bricks()
	f.Modified = time.Now()
}

// Restore rebuilds an inventory set from the saved session, including
// found counts.
func (f *File) Restore() (*inventory.Set, error) {
	set, err := inventory.NewSet(f.SetName, f.SetNumber, f.Bricks)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return set, nil
}

// SetInventoryPath records the inventory CSV location relative to the
// session file when possible.
func (f *File) SetInventoryPath(sessionPath, csvPath string) {
	rel, err := filepath.Rel(filepath.Dir(sessionPath), csvPath)
	if err != nil {
		f.SetPath = csvPath
	} else {
		f.SetPath = rel
	}
	f.Modified = time.Now()
}

// InventoryPath returns the absolute path to the inventory CSV.
func (f *File) InventoryPath(sessionPath string) string {
	if f.SetPath == "" {
		return ""
	}
	if filepath.IsAbs(f.SetPath) {
		return f.SetPath
	}
	return filepath.Join(filepath.Dir(sessionPath), f.SetPath)
}

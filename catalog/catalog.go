// Package catalog loads the artwork and alert JSON files and builds the view
// models shared by the gallery and shop pages.
package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// Paths of the static JSON files, relative to the data folder.
const (
	ArtworksPath = "json/artworks.json"
	AlertsPath   = "json/alerts.json"
)

//go:embed data/*
var defaultFiles embed.FS

// DefaultFS returns the catalog files bundled with the binary.
func DefaultFS() fs.FS {
	subFS, err := fs.Sub(defaultFiles, "data")
	if err != nil {
		panic("Failed to create catalog sub filesystem: " + err.Error())
	}
	return subFS
}

// Artwork is one entry of artworks.json.
type Artwork struct {
	ID          string            `json:"Id"`
	Name        string            `json:"name"`
	Src         string            `json:"src"`
	Date        string            `json:"date"`
	Medium      string            `json:"medium"`
	Size        string            `json:"size"`
	Description string            `json:"description,omitempty"`
	Prints      map[string]string `json:"prints,omitempty"` // print size -> formatted price
	Original    string            `json:"original,omitempty"`
}

// Alert is one weekend banner of alerts.json.
type Alert struct {
	Message    string `json:"message"`
	Background string `json:"background,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Catalog is the loaded artwork list and alert banners.
type Catalog struct {
	Artworks []Artwork
	Alerts   []Alert
}

// Load reads both catalog files from fsys. Each file is decoded independently;
// the returned error reports what failed while the rest of the catalog is still
// usable.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{Artworks: []Artwork{}, Alerts: []Alert{}}
	var errs []error

	if err := readJSON(fsys, ArtworksPath, &c.Artworks); err != nil {
		c.Artworks = []Artwork{}
		errs = append(errs, err)
	}
	if err := readJSON(fsys, AlertsPath, &c.Alerts); err != nil {
		c.Alerts = []Alert{}
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return c, fmt.Errorf("load catalog: %w", errors.Join(errs...))
	}
	return c, nil
}

// SourceFS returns dataFolder when it holds an artworks.json, otherwise the
// bundled catalog.
func SourceFS(dataFolder string) fs.FS {
	if dataFolder != "" {
		if _, err := os.Stat(filepath.Join(dataFolder, ArtworksPath)); err == nil {
			return os.DirFS(dataFolder)
		}
	}
	return DefaultFS()
}

func readJSON(fsys fs.FS, path string, v any) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w: %v", path, apperrors.ErrMalformedResponse, err)
	}
	return nil
}

// Find returns the artwork with the given Id or ErrNotFound.
func (c *Catalog) Find(id string) (Artwork, error) {
	for _, art := range c.Artworks {
		if art.ID == id {
			return art, nil
		}
	}
	return Artwork{}, apperrors.ErrNotFound
}

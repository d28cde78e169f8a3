// Package guides loads the long-form buying and application guides written
// in Markdown with YAML frontmatter.
package guides

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"irishgrants/internal/logger"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Guide is one article under /guides/.
type Guide struct {
	Slug        string    `yaml:"slug" json:"slug"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Date        time.Time `yaml:"date" json:"date"`
	Updated     time.Time `yaml:"updated" json:"updated,omitempty"`
	Category    string    `yaml:"category" json:"category"`
	Tags        []string  `yaml:"tags" json:"tags,omitempty"`
	Author      string    `yaml:"author" json:"author"`
	HTMLContent string    `yaml:"-" json:"-"`
}

// Modified is the date to show as last updated.
func (g Guide) Modified() time.Time {
	if g.Updated.After(g.Date) {
		return g.Updated
	}
	return g.Date
}

var (
	guides []Guide
	mu     sync.RWMutex
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Linkify))

// LoadAll reads all .md files from dir and stores them sorted by date, newest first.
// Files that fail to parse are logged and skipped.
func LoadAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var loaded []Guide
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn("guides: read failed", map[string]interface{}{"file": e.Name(), "error": err.Error()})
			continue
		}

		g, err := Parse(data)
		if err != nil {
			logger.Warn("guides: parse failed", map[string]interface{}{"file": e.Name(), "error": err.Error()})
			continue
		}
		if g.Slug == "" {
			g.Slug = strings.TrimSuffix(e.Name(), ".md")
		}
		loaded = append(loaded, g)
	}

	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Date.After(loaded[j].Date)
	})

	mu.Lock()
	guides = loaded
	mu.Unlock()

	logger.Info("guides: loaded", map[string]interface{}{"count": len(loaded), "dir": dir})
	return nil
}

// Parse splits YAML frontmatter from the Markdown body and renders the body to HTML.
func Parse(data []byte) (Guide, error) {
	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 || strings.TrimSpace(parts[0]) != "" {
		return Guide{}, fmt.Errorf("invalid frontmatter")
	}

	var g Guide
	if err := yaml.Unmarshal([]byte(parts[1]), &g); err != nil {
		return Guide{}, fmt.Errorf("frontmatter: %w", err)
	}
	if g.Title == "" {
		return Guide{}, fmt.Errorf("frontmatter: title is required")
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(strings.TrimSpace(parts[2])), &buf); err != nil {
		return Guide{}, err
	}
	g.HTMLContent = buf.String()
	return g, nil
}

// GetAll returns all guides sorted by date descending.
func GetAll() []Guide {
	mu.RLock()
	defer mu.RUnlock()
	result := make([]Guide, len(guides))
	copy(result, guides)
	return result
}

// GetBySlug returns a guide by its slug, or nil if not found.
func GetBySlug(slug string) *Guide {
	mu.RLock()
	defer mu.RUnlock()
	for i := range guides {
		if guides[i].Slug == slug {
			g := guides[i]
			return &g
		}
	}
	return nil
}

// GetByCategory returns all guides matching a category ("ev" or "education").
func GetByCategory(cat string) []Guide {
	mu.RLock()
	defer mu.RUnlock()
	var result []Guide
	for _, g := range guides {
		if g.Category == cat {
			result = append(result, g)
		}
	}
	return result
}

// Package catalog holds the reference data behind every page: counties,
// grants, deadlines, example vehicles and courses. The data ships embedded
// as YAML and is loaded once.
package catalog

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"irishgrants/internal/estimator"
	"irishgrants/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type courseFile struct {
	Springboard []models.Course `yaml:"springboard"`
	HCI         []models.Course `yaml:"hci"`
}

type catalog struct {
	counties   []models.County
	grants     []models.Grant
	deadlines  []models.Deadline
	evExamples []models.EVExample
	courses    courseFile
	metadata   models.ContentMetadata
}

var (
	loaded  *catalog
	loadErr error
	once    sync.Once
)

// Load parses the embedded data. It is safe to call more than once.
func Load() error {
	once.Do(func() {
		loaded, loadErr = parse()
	})
	return loadErr
}

func get() *catalog {
	if err := Load(); err != nil {
		panic("catalog: " + err.Error())
	}
	return loaded
}

func parse() (*catalog, error) {
	c := &catalog{}
	files := []struct {
		name string
		dst  interface{}
	}{
		{"counties.yaml", &c.counties},
		{"grants.yaml", &c.grants},
		{"deadlines.yaml", &c.deadlines},
		{"ev_examples.yaml", &c.evExamples},
		{"courses.yaml", &c.courses},
		{"metadata.yaml", &c.metadata},
	}
	for _, f := range files {
		data, err := dataFS.ReadFile("data/" + f.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(c *catalog) error {
	if len(c.counties) != len(estimator.Counties()) {
		return fmt.Errorf("counties.yaml has %d counties, want %d", len(c.counties), len(estimator.Counties()))
	}
	for _, county := range c.counties {
		name, ok := estimator.CanonicalCounty(county.Name)
		if !ok || name != county.Name {
			return fmt.Errorf("unknown county %q", county.Name)
		}
		if county.Slug != estimator.CountySlug(county.Name) {
			return fmt.Errorf("county %s: slug %q, want %q", county.Name, county.Slug, estimator.CountySlug(county.Name))
		}
	}
	ids := make(map[string]bool, len(c.grants))
	for _, g := range c.grants {
		if g.ID == "" || g.OfficialURL == "" {
			return fmt.Errorf("grant %q: id and official_url are required", g.Name)
		}
		if ids[g.ID] {
			return fmt.Errorf("duplicate grant id %q", g.ID)
		}
		ids[g.ID] = true
	}
	for _, d := range c.deadlines {
		if !ids[d.GrantID] {
			return fmt.Errorf("deadline %q references unknown grant %q", d.Grant, d.GrantID)
		}
	}
	return nil
}

// Counties returns all 26 counties in alphabetical order.
func Counties() []models.County {
	src := get().counties
	out := make([]models.County, len(src))
	copy(out, src)
	return out
}

// CountyBySlug finds a county by its URL segment ("county-cork"), or nil.
func CountyBySlug(slug string) *models.County {
	slug = strings.ToLower(strings.Trim(slug, "/"))
	for _, c := range get().counties {
		if c.Slug == slug {
			county := c
			return &county
		}
	}
	return nil
}

// CountyByName finds a county case-insensitively, or nil.
func CountyByName(name string) *models.County {
	canonical, ok := estimator.CanonicalCounty(name)
	if !ok {
		return nil
	}
	for _, c := range get().counties {
		if c.Name == canonical {
			county := c
			return &county
		}
	}
	return nil
}

func IsCounty(name string) bool {
	return CountyByName(name) != nil
}

// CountiesByProvince groups counties for the county index.
func CountiesByProvince() map[string][]models.County {
	out := make(map[string][]models.County)
	for _, c := range get().counties {
		out[c.Province] = append(out[c.Province], c)
	}
	return out
}

func Grants() []models.Grant {
	src := get().grants
	out := make([]models.Grant, len(src))
	copy(out, src)
	return out
}

func GrantsByCategory(category string) []models.Grant {
	var out []models.Grant
	for _, g := range get().grants {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

func GrantByID(id string) *models.Grant {
	for _, g := range get().grants {
		if g.ID == id {
			grant := g
			return &grant
		}
	}
	return nil
}

func Deadlines() []models.Deadline {
	src := get().deadlines
	out := make([]models.Deadline, len(src))
	copy(out, src)
	return out
}

func EVExamples() []models.EVExample {
	src := get().evExamples
	out := make([]models.EVExample, len(src))
	copy(out, src)
	return out
}

// Courses returns example courses for "springboard" or "hci".
func Courses(kind string) []models.Course {
	var src []models.Course
	switch kind {
	case "springboard":
		src = get().courses.Springboard
	case "hci":
		src = get().courses.HCI
	}
	out := make([]models.Course, len(src))
	copy(out, src)
	return out
}

func Metadata() models.ContentMetadata {
	return get().metadata
}

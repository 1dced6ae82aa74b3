package habits

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Habit describes one class the workflow can emit: how to label it on the
// dashboard, whether it counts as a bad habit, and the warning tone to use.
type Habit struct {
	Class   string `yaml:"class"`
	Display string `yaml:"display"`
	Tracked bool   `yaml:"tracked"`
	ToneHz  int    `yaml:"tone_hz"`
}

// Catalog maps workflow classes to habit descriptions. Lookups never fail;
// unknown classes get a generic untracked entry.
type Catalog struct {
	byClass map[string]Habit
}

const defaultToneHz = 600

type catalogFile struct {
	Habits []Habit `yaml:"habits"`
}

// Default returns the built-in catalog matching the shirt-chewing workflow.
func Default() Catalog {
	return build([]Habit{
		{Class: "chomping", Display: "Chomping", Tracked: true, ToneHz: 800},
		{Class: "about-to-chomp", Display: "About to Chomp", Tracked: false, ToneHz: 700},
		{Class: "eating", Display: "Eating", Tracked: false},
		{Class: "pondering", Display: "Pondering", Tracked: false},
		{Class: "none", Display: "None", Tracked: false},
	})
}

// Load reads a catalog from a YAML file. An empty path returns the default
// catalog.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read habits file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("parse habits file: %w", err)
	}
	if len(file.Habits) == 0 {
		return Catalog{}, fmt.Errorf("habits file %s declares no habits", path)
	}
	for _, h := range file.Habits {
		if h.Class == "" {
			return Catalog{}, fmt.Errorf("habits file %s: entry without a class", path)
		}
	}
	return build(file.Habits), nil
}

func build(entries []Habit) Catalog {
	m := make(map[string]Habit, len(entries))
	for _, h := range entries {
		if h.Display == "" {
			h.Display = displayName(h.Class)
		}
		if h.ToneHz <= 0 {
			h.ToneHz = defaultToneHz
		}
		m[h.Class] = h
	}
	return Catalog{byClass: m}
}

func displayName(class string) string {
	words := strings.Split(strings.ReplaceAll(class, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Lookup returns the habit for a class, or a generic untracked entry.
func (c Catalog) Lookup(class string) Habit {
	if h, ok := c.byClass[class]; ok {
		return h
	}
	return Habit{Class: class, Display: "Habit: " + class, ToneHz: defaultToneHz}
}

// Tracked reports whether a class counts as a bad habit.
func (c Catalog) Tracked(class string) bool {
	return c.byClass[class].Tracked
}

// TrackedClasses lists the classes that count as bad habits.
func (c Catalog) TrackedClasses() []string {
	var out []string
	for class, h := range c.byClass {
		if h.Tracked {
			out = append(out, class)
		}
	}
	return out
}

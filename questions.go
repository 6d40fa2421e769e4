package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed questions.json
var defaultQuestionPack []byte

// loadCategories reads a question pack from path, or the embedded default
// pack when path is empty. Each category must hold exactly five questions
// valued 100 through 500 in ascending order; a malformed pack is a startup
// error, since the board layout depends on it.
func loadCategories(path string) ([]Category, error) {
	data := defaultQuestionPack

	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parsing question pack: %w", err)
	}

	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	return categories, nil
}

func validateCategories(categories []Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("question pack contains no categories")
	}

	seen := make(map[string]bool, len(categories))

	for _, c := range categories {
		if c.Name == "" {
			return fmt.Errorf("question pack contains an unnamed category")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true

		if len(c.Questions) != 5 {
			return fmt.Errorf("category %q has %d questions, want 5", c.Name, len(c.Questions))
		}

		for i, q := range c.Questions {
			want := (i + 1) * 100
			if q.Value != want {
				return fmt.Errorf("category %q question %d has value %d, want %d", c.Name, i+1, q.Value, want)
			}
			if q.Question == "" || q.Answer == "" {
				return fmt.Errorf("category %q question %d is missing its prompt or answer", c.Name, i+1)
			}
		}
	}

	return nil
}

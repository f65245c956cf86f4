package core

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed categories.toml
var defaultCategoriesTOML []byte

// Category is a read-only expense category; expenses reference it by ID.
type Category struct {
	ID   string `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
	Icon string `toml:"icon" json:"icon"`
}

// Categories is an ordered, read-only category list.
type Categories []Category

var (
	ErrEmptyCategories    = errors.New("category list is empty")
	ErrDuplicateCategory  = errors.New("duplicate category id")
	ErrIncompleteCategory = errors.New("category id and name are required")
)

type categoryFile struct {
	Category []Category `toml:"category"`
}

// DefaultCategories returns the built-in category list.
func DefaultCategories() Categories {
	cats, err := ParseCategories(defaultCategoriesTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded categories are invalid: %v", err))
	}
	return cats
}

// LoadCategories reads a category list from a TOML file. An empty path
// returns the built-in list.
func LoadCategories(path string) (Categories, error) {
	if path == "" {
		return DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	cats, err := ParseCategories(data)
	if err != nil {
		return nil, fmt.Errorf("parsing categories %s: %w", path, err)
	}
	return cats, nil
}

// ParseCategories decodes and validates a TOML category list.
func ParseCategories(data []byte) (Categories, error) {
	var f categoryFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Category) == 0 {
		return nil, ErrEmptyCategories
	}
	seen := make(map[string]struct{}, len(f.Category))
	out := make(Categories, 0, len(f.Category))
	for _, c := range f.Category {
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		if c.ID == "" || c.Name == "" {
			return nil, ErrIncompleteCategory
		}
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, c.ID)
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// ByID returns the category with the given id.
func (cs Categories) ByID(id string) (Category, bool) {
	for _, c := range cs {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Name returns the category name for id, or "" when unknown.
func (cs Categories) Name(id string) string {
	c, _ := cs.ByID(id)
	return c.Name
}

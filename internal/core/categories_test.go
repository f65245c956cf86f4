package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 7 {
		t.Fatalf("expected 7 default categories, got %d", len(cats))
	}
	if cats[0].ID != "1" || cats[0].Name != "Savings" {
		t.Fatalf("unexpected first category %+v", cats[0])
	}
	if got := cats.Name("6"); got != "Health" {
		t.Fatalf("Name(6) = %q", got)
	}
	if got := cats.Name("missing"); got != "" {
		t.Fatalf("expected empty name for unknown id, got %q", got)
	}
}

func TestParseCategoriesErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrEmptyCategories},
		{"missing name", "[[category]]\nid = \"1\"\n", ErrIncompleteCategory},
		{"duplicate", "[[category]]\nid = \"1\"\nname = \"A\"\n[[category]]\nid = \"1\"\nname = \"B\"\n", ErrDuplicateCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCategories([]byte(tc.in))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := ParseCategories([]byte("[[category")); err == nil {
		t.Fatalf("expected TOML syntax error")
	}
}

func TestLoadCategoriesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cats.toml")
	content := "[[category]]\nid = \"a\"\nname = \"Rent\"\n\n[[category]]\nid = \"b\"\nname = \"Travel\"\nicon = \"plane\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cats, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cats) != 2 || cats[1].Icon != "plane" {
		t.Fatalf("unexpected categories %+v", cats)
	}

	if _, err := LoadCategories(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	cats, err = LoadCategories("")
	if err != nil || len(cats) != len(DefaultCategories()) {
		t.Fatalf("expected defaults for empty path, got %v (err=%v)", cats, err)
	}
}

// Package corpus loads the bundled English training corpus.
// The corpus files are baked into the binary with go:embed, so training
// works without any filesystem setup. Identifiers can also point at
// loose YAML files or directories for custom corpora.
package corpus

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// embeddedData contains the bundled corpus files baked into the binary.
//
//go:embed data
var embeddedData embed.FS

// Pair is a single prompt/response exchange.
type Pair struct {
	Input    string
	Response string
	Category string
}

// Corpus is a named collection of training pairs.
type Corpus struct {
	Name       string
	Categories []string
	Pairs      []Pair
}

// CategoryInfo describes one bundled corpus category.
type CategoryInfo struct {
	Name  string
	File  string
	Pairs int
}

// document matches the corpus YAML structure: a list of categories and
// a list of conversations, each conversation a chain of statements.
type document struct {
	Categories    []string   `yaml:"categories"`
	Conversations [][]string `yaml:"conversations"`
}

// Load resolves a corpus identifier and parses its files.
//
// Accepted identifiers:
//   - "english" (or empty): every bundled English category
//   - "english.<category>": a single bundled category
//   - a path to a YAML file or a directory of YAML files
func Load(ctx context.Context, name string) (*Corpus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "english"
	}

	if name == "english" {
		files, err := embeddedFiles()
		if err != nil {
			return nil, err
		}
		return parseAll(ctx, name, files, embeddedData.ReadFile)
	}

	if strings.HasPrefix(name, "english.") {
		category := strings.TrimPrefix(name, "english.")
		file := "data/english/" + category + ".yml"
		if _, err := fs.Stat(embeddedData, file); err != nil {
			return nil, fmt.Errorf("unknown corpus %q", name)
		}
		return parseAll(ctx, name, []string{file}, embeddedData.ReadFile)
	}

	info, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("unknown corpus %q: %w", name, err)
	}
	if info.IsDir() {
		files, err := dirFiles(name)
		if err != nil {
			return nil, err
		}
		return parseAll(ctx, name, files, os.ReadFile)
	}
	return parseAll(ctx, name, []string{name}, os.ReadFile)
}

// Categories lists the bundled corpus categories with their pair counts.
func Categories() ([]CategoryInfo, error) {
	files, err := embeddedFiles()
	if err != nil {
		return nil, err
	}

	infos := make([]CategoryInfo, 0, len(files))
	for _, file := range files {
		data, err := embeddedData.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded file %s: %w", file, err)
		}
		doc, err := parseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		stem := fileStem(file)
		infos = append(infos, CategoryInfo{
			Name:  doc.category(stem),
			File:  file,
			Pairs: len(doc.flatten(stem)),
		})
	}
	return infos, nil
}

// embeddedFiles returns the bundled corpus files in deterministic order.
func embeddedFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(embeddedData, "data/english", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isYAML(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk embedded corpus: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// dirFiles returns the YAML files directly inside dir, sorted.
func dirFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// parseAll reads and parses corpus files in parallel, then flattens the
// conversations into pairs in file order.
func parseAll(ctx context.Context, name string, files []string, read func(string) ([]byte, error)) (*Corpus, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("corpus %q contains no YAML files", name)
	}

	g, _ := errgroup.WithContext(ctx)
	parsed := make([]*document, len(files))

	for i, file := range files {
		g.Go(func() error {
			data, err := read(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			doc, err := parseDocument(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			parsed[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	corpus := &Corpus{Name: name}
	seen := make(map[string]bool)
	for i, doc := range parsed {
		stem := fileStem(files[i])
		if category := doc.category(stem); !seen[category] {
			seen[category] = true
			corpus.Categories = append(corpus.Categories, category)
		}
		corpus.Pairs = append(corpus.Pairs, doc.flatten(stem)...)
	}

	if len(corpus.Pairs) == 0 {
		return nil, fmt.Errorf("corpus %q contains no conversation pairs", name)
	}
	return corpus, nil
}

func parseDocument(data []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// category returns the document's primary category, falling back to the
// file stem when the document names none.
func (d *document) category(fallback string) string {
	if len(d.Categories) > 0 && strings.TrimSpace(d.Categories[0]) != "" {
		return strings.TrimSpace(d.Categories[0])
	}
	return fallback
}

// flatten turns conversation chains into pairs. A chain [a, b, c]
// yields (a, b) and (b, c), matching how the corpus files are written.
func (d *document) flatten(fallbackCategory string) []Pair {
	category := d.category(fallbackCategory)

	var pairs []Pair
	for _, conv := range d.Conversations {
		for i := 0; i+1 < len(conv); i++ {
			input := strings.TrimSpace(conv[i])
			response := strings.TrimSpace(conv[i+1])
			if input == "" || response == "" {
				continue
			}
			pairs = append(pairs, Pair{
				Input:    input,
				Response: response,
				Category: category,
			})
		}
	}
	return pairs
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

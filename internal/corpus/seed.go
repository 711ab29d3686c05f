package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
)

// SeedFile is the YAML layout of a corpus file.
//
//	documents:
//	  - id: d1
//	    title: Gold shipment
//	    body: shipment of gold damaged in a fire
//	  - tokens: [delivery, of, silver, arrived]
//	  - tokens: []
type SeedFile struct {
	Documents []SeedDocument `yaml:"documents"`
}

// SeedDocument is either raw text (Title/Body) or an already tokenized
// document (Tokens). An explicit empty token list is an empty document.
type SeedDocument struct {
	ID     string   `yaml:"id"`
	Title  string   `yaml:"title"`
	Body   string   `yaml:"body"`
	Tokens []string `yaml:"tokens"`
}

// Document converts the seed entry.
func (s SeedDocument) Document() Document {
	doc := Document{ID: s.ID, Title: s.Title, Body: s.Body}
	if s.Tokens != nil {
		doc.Tokens = append([]string{}, s.Tokens...)
	}
	return doc
}

// LoadSeedFile parses a YAML (or JSON) corpus file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return &f, nil
}

// Seed adds every seed document to store in file order. Documents that are
// already stored are skipped, so seeding is idempotent.
func Seed(ctx context.Context, store Store, f *SeedFile) (int, error) {
	base := time.Now().UTC()
	added := 0
	for i, sd := range f.Documents {
		doc := sd.Document()
		doc.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		if err := ValidateDocument(doc); err != nil {
			return added, fmt.Errorf("seed document %d: %w", i, err)
		}
		if _, err := store.Add(ctx, doc); err != nil {
			if errors.Is(err, apperrors.ErrDocumentExists) {
				continue
			}
			return added, fmt.Errorf("seeding document %d: %w", i, err)
		}
		added++
	}
	return added, nil
}

// SnapshotFromFile decomposes the file's documents exactly as listed. Unlike
// Seed it keeps empty and duplicate documents, so document i of the
// snapshot is entry i of the file. Entries without an ID are named by
// position.
func SnapshotFromFile(f *SeedFile, settings Settings) (*Snapshot, error) {
	docs := make([]Document, len(f.Documents))
	for i, sd := range f.Documents {
		doc := sd.Document()
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("doc-%06d", i+1)
		}
		docs[i] = doc
	}
	return BuildSnapshot(docs, settings)
}

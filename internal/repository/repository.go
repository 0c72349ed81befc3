package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schaferjart/telegram-finance/internal/models"
)

// Store is the persistence boundary of the ledger engine: the whole document
// is read at the start of an operation and written back at the end. The
// engine never keeps state between operations.
type Store interface {
	Load() (*models.Document, error)
	Save(doc *models.Document) error
}

// FileStore keeps the document as one indented JSON file. Concurrent writers
// are not supported; the last full-document write wins.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document from disk. A missing or corrupt file is replaced by
// the empty default document, which is written out immediately so the next
// operation starts from a valid file.
func (s *FileStore) Load() (*models.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return s.heal()
	}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return s.heal()
	}
	doc.Normalize()
	return &doc, nil
}

func (s *FileStore) heal() (*models.Document, error) {
	doc := models.NewDocument()
	if err := s.Save(doc); err != nil {
		return nil, fmt.Errorf("initializing data file: %w", err)
	}
	return doc, nil
}

func (s *FileStore) Save(doc *models.Document) error {
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	return nil
}

// MemStore holds the document in memory for tests. Load and Save deep-copy so
// callers can never mutate stored state without an explicit Save, mirroring
// the read-modify-write-persist cycle of the file store.
type MemStore struct {
	doc *models.Document
}

func NewMemStore() *MemStore {
	return &MemStore{doc: models.NewDocument()}
}

func (s *MemStore) Load() (*models.Document, error) {
	return clone(s.doc)
}

func (s *MemStore) Save(doc *models.Document) error {
	copied, err := clone(doc)
	if err != nil {
		return err
	}
	s.doc = copied
	return nil
}

func clone(doc *models.Document) (*models.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out models.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

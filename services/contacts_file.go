package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"contactbook/apperr"
	"contactbook/models"
)

// FileContactStore keeps the whole collection in one JSON file. Every write
// re-reads, mutates, and atomically rewrites the file under a single-writer
// mutex, so writes within this process cannot clobber each other. The mutex
// does not reach across processes: run at most one instance against a given
// file, and prefer the Mongo store for anything multi-client.
type FileContactStore struct {
	path string
	mu   sync.Mutex
}

func NewFileContactStore(path string) (*FileContactStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating contacts dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("creating contacts file: %w", err)
		}
	}
	return &FileContactStore{path: path}, nil
}

func (s *FileContactStore) load() ([]models.Contact, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading contacts file: %w", err)
	}
	var contacts []models.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("decoding contacts file: %w", err)
	}
	return contacts, nil
}

// save writes to a temp file and renames it over the collection, so readers
// never observe a half-written file.
func (s *FileContactStore) save(contacts []models.Contact) error {
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding contacts: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing contacts file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing contacts file: %w", err)
	}
	return nil
}

func (s *FileContactStore) List(_ context.Context, owner string) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	owned := []models.Contact{}
	for _, c := range contacts {
		if c.Owner == owner {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

func (s *FileContactStore) Get(_ context.Context, id, owner string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	if i := indexOf(contacts, id, owner); i >= 0 {
		c := contacts[i]
		return &c, nil
	}
	return nil, apperr.NotFound("Not found")
}

func (s *FileContactStore) Create(_ context.Context, owner string, in ContactInput) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	c := models.Contact{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Owner: owner,
	}
	contacts = append(contacts, c)
	if err := s.save(contacts); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *FileContactStore) Update(_ context.Context, id, owner string, in ContactUpdate) (*models.Contact, error) {
	return s.mutate(id, owner, func(c *models.Contact) {
		if in.Name != nil {
			c.Name = *in.Name
		}
		if in.Email != nil {
			c.Email = *in.Email
		}
		if in.Phone != nil {
			c.Phone = *in.Phone
		}
	})
}

func (s *FileContactStore) SetFavorite(_ context.Context, id, owner string, favorite bool) (*models.Contact, error) {
	return s.mutate(id, owner, func(c *models.Contact) {
		c.Favorite = favorite
	})
}

func (s *FileContactStore) Delete(_ context.Context, id, owner string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(contacts, id, owner)
	if i < 0 {
		return nil, apperr.NotFound("Not found")
	}
	deleted := contacts[i]
	contacts = append(contacts[:i], contacts[i+1:]...)
	if err := s.save(contacts); err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (s *FileContactStore) mutate(id, owner string, apply func(*models.Contact)) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(contacts, id, owner)
	if i < 0 {
		return nil, apperr.NotFound("Not found")
	}
	apply(&contacts[i])
	if err := s.save(contacts); err != nil {
		return nil, err
	}
	c := contacts[i]
	return &c, nil
}

func indexOf(contacts []models.Contact, id, owner string) int {
	for i, c := range contacts {
		if c.ID == id && c.Owner == owner {
			return i
		}
	}
	return -1
}

// Package clientstore is the file-backed client directory: a JSON document
// keyed by client_key plus a registry of permitted custom attribute keys.
// It is the source of truth for ticket billing rates. All access funnels
// through one in-process mutex, and writes land via temp-file rename, so a
// reader never observes a torn or half-updated document.
package clientstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	clientTableFile    = "client_table.json"
	attributeKeysFile  = "custom_attributes.json"
	// BillingRateKey is the client attribute holding the hourly rate used by
	// time-entry billing.
	BillingRateKey = "support_rate"
)

var (
	// ErrNotFound is returned when a client key or attribute key does not exist.
	ErrNotFound = errors.New("client record not found")

	// ErrAlreadyExists is returned when creating a client or attribute key that is already present.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInvalidKey is returned for blank or reserved keys.
	ErrInvalidKey = errors.New("invalid key")
)

// reservedKeys are built-in client fields that can never be managed as custom
// attributes. The demographic set mirrors what the client edit form owns.
var reservedKeys = map[string]bool{
	"name":         true,
	"display_name": true,
	"key":          true,

	"address_line1":           true,
	"address_line2":           true,
	"city":                    true,
	"state":                   true,
	"postal_code":             true,
	"support_hours_allowance": true,
	"primary_contact_name":    true,
	"primary_contact_phone":   true,
	"primary_contact_email":   true,
	"office_manager_name":     true,
	"office_manager_phone":    true,
	"office_manager_email":    true,
}

// Entry is one client record: the display name plus arbitrary attributes.
type Entry map[string]interface{}

// Name returns the client display name, falling back to the given key.
func (e Entry) Name(fallback string) string {
	for _, field := range []string{"name", "display_name"} {
		if v, ok := e[field].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}

// Store serializes all reads and writes against the two JSON documents.
type Store struct {
	mu      sync.Mutex
	dataDir string
}

// NewStore creates a Store rooted at dataDir. The directory is created on
// first write, not here.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) tablePath() string {
	return filepath.Join(s.dataDir, clientTableFile)
}

func (s *Store) keysPath() string {
	return filepath.Join(s.dataDir, attributeKeysFile)
}

// loadTable reads the client table without locking; callers hold s.mu.
func (s *Store) loadTable() (map[string]Entry, error) {
	raw, err := os.ReadFile(s.tablePath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, fmt.Errorf("reading client table: %w", err)
	}

	table := map[string]Entry{}
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parsing client table: %w", err)
	}
	for key, entry := range table {
		if entry == nil {
			table[key] = Entry{"name": key}
		}
	}
	return table, nil
}

// writeJSON marshals v and replaces path atomically.
func (s *Store) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(s.dataDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// saveTable rewrites the client table, ensuring every entry carries a name.
func (s *Store) saveTable(table map[string]Entry) error {
	cleaned := map[string]Entry{}
	for key, entry := range table {
		if entry == nil {
			entry = Entry{}
		}
		copied := Entry{}
		for k, v := range entry {
			copied[k] = v
		}
		if copied.Name("") == "" {
			copied["name"] = key
		}
		cleaned[key] = copied
	}
	return s.writeJSON(s.tablePath(), cleaned)
}

// List returns a copy of the entire client table.
func (s *Store) List() (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTable()
}

// Get returns a single client entry.
func (s *Store) Get(key string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	entry, ok := table[key]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

// ResolveName returns the display name for a client key.
func (s *Store) ResolveName(key string) (string, error) {
	entry, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return entry.Name(key), nil
}

// ResolveKeyByName finds the client key whose display name matches
// (case-insensitive). Used by the name-based lookup endpoint.
func (s *Store) ResolveKeyByName(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadTable()
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", ErrNotFound
	}
	for key, entry := range table {
		if strings.ToLower(entry.Name(key)) == needle {
			return key, nil
		}
	}
	return "", ErrNotFound
}

// BillingRate returns the client's configured hourly rate as entered, or nil
// when no rate is set. Tickets for rate-less clients persist with a null
// calculated value.
func (s *Store) BillingRate(key string) (*string, error) {
	entry, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := entry[BillingRateKey]
	if !ok || raw == nil {
		return nil, nil
	}
	var rate string
	switch v := raw.(type) {
	case string:
		rate = strings.TrimSpace(v)
	case float64:
		rate = fmt.Sprintf("%g", v)
	default:
		return nil, nil
	}
	if rate == "" {
		return nil, nil
	}
	return &rate, nil
}

// Create adds a new client entry. The key must be unused.
func (s *Store) Create(key, name string, attrs map[string]interface{}) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	name = strings.TrimSpace(name)
	if key == "" {
		return nil, fmt.Errorf("%w: client_key is required", ErrInvalidKey)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidKey)
	}

	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	if _, exists := table[key]; exists {
		return nil, fmt.Errorf("%w: client %q", ErrAlreadyExists, key)
	}

	entry := Entry{}
	for k, v := range attrs {
		entry[k] = v
	}
	entry["name"] = name
	table[key] = entry

	if err := s.saveTable(table); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update merges a name change and attribute values into an existing entry.
func (s *Store) Update(key string, name *string, attrs map[string]interface{}) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	entry, ok := table[key]
	if !ok {
		return nil, ErrNotFound
	}

	updated := Entry{}
	for k, v := range entry {
		updated[k] = v
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name cannot be blank", ErrInvalidKey)
		}
		updated["name"] = trimmed
	}
	for k, v := range attrs {
		if v == nil {
			delete(updated, k)
			continue
		}
		updated[k] = v
	}
	table[key] = updated

	if err := s.saveTable(table); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a client entry. Tickets referencing the key keep their
// snapshotted client name.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadTable()
	if err != nil {
		return err
	}
	if _, ok := table[key]; !ok {
		return ErrNotFound
	}
	delete(table, key)
	return s.saveTable(table)
}

func normalizeAttributeKeys(raw []string) []string {
	seen := map[string]bool{}
	keys := []string{}
	for _, key := range raw {
		cleaned := strings.TrimSpace(key)
		if cleaned == "" || reservedKeys[cleaned] || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		keys = append(keys, cleaned)
	}
	sort.Strings(keys)
	return keys
}

// loadAttributeKeys reads the registry without locking; callers hold s.mu.
// When the registry file is missing or empty, the registry seeds itself from
// the non-reserved keys already present on client entries.
func (s *Store) loadAttributeKeys() ([]string, error) {
	raw, err := os.ReadFile(s.keysPath())
	if err == nil {
		keys := []string{}
		if json.Unmarshal(raw, &keys) == nil {
			keys = normalizeAttributeKeys(keys)
			if len(keys) > 0 {
				return keys, nil
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading attribute registry: %w", err)
	}

	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	discovered := []string{}
	for _, entry := range table {
		for k := range entry {
			if !reservedKeys[k] {
				discovered = append(discovered, k)
			}
		}
	}
	keys := normalizeAttributeKeys(discovered)
	if err := s.writeJSON(s.keysPath(), keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// AttributeKeys returns the sorted custom attribute registry.
func (s *Store) AttributeKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAttributeKeys()
}

// AddAttributeKey appends a key to the registry.
func (s *Store) AddAttributeKey(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned := strings.TrimSpace(key)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: attribute key cannot be blank", ErrInvalidKey)
	}
	if reservedKeys[cleaned] {
		return nil, fmt.Errorf("%w: attribute key %q is reserved", ErrInvalidKey, cleaned)
	}

	keys, err := s.loadAttributeKeys()
	if err != nil {
		return nil, err
	}
	for _, existing := range keys {
		if existing == cleaned {
			return nil, fmt.Errorf("%w: attribute key %q", ErrAlreadyExists, cleaned)
		}
	}

	keys = normalizeAttributeKeys(append(keys, cleaned))
	if err := s.writeJSON(s.keysPath(), keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// RemoveAttributeKey removes a key from the registry and strips it from every
// stored client entry in the same critical section, so readers never see the
// registry and the per-client data disagree.
func (s *Store) RemoveAttributeKey(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned := strings.TrimSpace(key)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: attribute key cannot be blank", ErrInvalidKey)
	}

	keys, err := s.loadAttributeKeys()
	if err != nil {
		return nil, err
	}
	found := false
	filtered := []string{}
	for _, existing := range keys {
		if existing == cleaned {
			found = true
			continue
		}
		filtered = append(filtered, existing)
	}
	if !found {
		return nil, fmt.Errorf("%w: attribute key %q", ErrNotFound, cleaned)
	}

	if err := s.writeJSON(s.keysPath(), filtered); err != nil {
		return nil, err
	}

	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	changed := false
	for clientKey, entry := range table {
		if _, ok := entry[cleaned]; ok {
			delete(entry, cleaned)
			table[clientKey] = entry
			changed = true
		}
	}
	if changed {
		if err := s.saveTable(table); err != nil {
			return nil, err
		}
	}
	return filtered, nil
}

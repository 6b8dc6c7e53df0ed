package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "profiles.yaml"

// Profile is one saved warehouse connection.
type Profile struct {
	Name    string `yaml:"name"`
	ConnStr string `yaml:"conn_str"`
}

type state struct {
	Default  string    `yaml:"default,omitempty"`
	Profiles []Profile `yaml:"profiles"`
}

// Store reads and writes saved connection profiles under one directory.
type Store struct {
	Dir string
}

// DefaultStore places profiles in the user config directory.
func DefaultStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("finding config directory: %w", err)
	}
	return &Store{Dir: filepath.Join(base, "satbench")}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.Dir, fileName)
}

func (s *Store) load() (*state, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &state{}, nil
		}
		return nil, err
	}

	var st state
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path(), err)
	}
	return &st, nil
}

func (s *Store) save(st *state) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}

	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path(), err)
	}
	return nil
}

// List returns every saved profile.
func (s *Store) List() ([]Profile, error) {
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	return st.Profiles, nil
}

// Add saves a profile, replacing any existing one with the same name.
func (s *Store) Add(name, connStr string) error {
	st, err := s.load()
	if err != nil {
		return err
	}

	for i := range st.Profiles {
		if st.Profiles[i].Name == name {
			st.Profiles[i].ConnStr = connStr
			return s.save(st)
		}
	}

	st.Profiles = append(st.Profiles, Profile{Name: name, ConnStr: connStr})
	return s.save(st)
}

// Remove deletes a profile, clearing the default if it pointed at it.
func (s *Store) Remove(name string) error {
	st, err := s.load()
	if err != nil {
		return err
	}

	for i := range st.Profiles {
		if st.Profiles[i].Name == name {
			st.Profiles = append(st.Profiles[:i], st.Profiles[i+1:]...)
			if st.Default == name {
				st.Default = ""
			}
			return s.save(st)
		}
	}

	return fmt.Errorf("profile %q not found", name)
}

// SetDefault marks an existing profile as the default connection.
func (s *Store) SetDefault(name string) error {
	st, err := s.load()
	if err != nil {
		return err
	}

	for _, p := range st.Profiles {
		if p.Name == name {
			st.Default = name
			return s.save(st)
		}
	}

	return fmt.Errorf("profile %q not found", name)
}

// Resolve returns the connection string for a named profile.
func (s *Store) Resolve(name string) (string, error) {
	st, err := s.load()
	if err != nil {
		return "", err
	}

	for _, p := range st.Profiles {
		if p.Name == name {
			return p.ConnStr, nil
		}
	}

	return "", fmt.Errorf("profile %q not found", name)
}

// ResolveConnStr picks the connection string for a run: an explicit string
// wins, then a named profile, then the stored default.
func (s *Store) ResolveConnStr(db, profileName string) (string, error) {
	if db != "" {
		return db, nil
	}
	if profileName != "" {
		return s.Resolve(profileName)
	}

	st, err := s.load()
	if err != nil {
		return "", err
	}
	if st.Default != "" {
		return s.Resolve(st.Default)
	}

	return "", fmt.Errorf("no connection configured: pass --db, --profile, or set a default profile")
}

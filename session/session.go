// Package session holds the credentials the admin client works with.
//
// A Session is loaded once from a Store and handed to whatever needs it;
// nothing reads the backing storage behind the caller's back.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/labstack/gommon/log"
)

// Keys used in the persisted file; they match the browser storage keys of the web client.
const (
	TokenKey = "auth_token"
	UserKey  = "user"
)

type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Role is "" when no user, or an unreadable one, is stored.
func (s Session) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore persists a session as a flat JSON object of string values,
// the user being itself a JSON encoded string.
type FileStore struct {
	Path string
}

func DefaultPath() (string, error) {
	if p := os.Getenv("ESTATEDESK_SESSION"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".estatedesk", "session.json"), nil
}

// Load returns an empty session when nothing has been saved yet.
func (fs FileStore) Load() (Session, error) {
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		log.Warnf("session file %s is unreadable, starting logged out: %v", fs.Path, err)
		return Session{}, nil
	}

	s := Session{Token: values[TokenKey]}
	if raw, ok := values[UserKey]; ok {
		u := User{}
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			log.Warnf("stored user is unreadable: %v", err)
		} else {
			s.User = &u
		}
	}
	return s, nil
}

func (fs FileStore) Save(s Session) error {
	values := map[string]string{TokenKey: s.Token}
	if s.User != nil {
		u, err := json.Marshal(s.User)
		if err != nil {
			return err
		}
		values[UserKey] = string(u)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fs.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(fs.Path, data, 0o600)
}

func (fs FileStore) Clear() error {
	if err := os.Remove(fs.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

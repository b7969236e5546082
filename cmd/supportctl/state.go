package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spec-kit/support-portal/pkg/client"
)

// stateStore keeps the session cookie between invocations.
type stateStore struct {
	path string
}

type savedState struct {
	Cookies []savedCookie `json:"cookies"`
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func openStateStore(path string) (*stateStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".supportctl", "session.json")
	}
	return &stateStore{path: path}, nil
}

func (s *stateStore) restore(api *client.Client) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var st savedState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(st.Cookies))
	for _, c := range st.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	api.SetCookies(cookies)
	return nil
}

func (s *stateStore) save(api *client.Client) error {
	st := savedState{Cookies: []savedCookie{}}
	for _, c := range api.Cookies() {
		st.Cookies = append(st.Cookies, savedCookie{Name: c.Name, Value: c.Value})
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

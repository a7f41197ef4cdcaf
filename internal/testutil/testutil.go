// Package testutil provides test doubles and helpers shared by taskfetch tests.
package testutil

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Iron-Ham/taskfetch/internal/api"
	"github.com/Iron-Ham/taskfetch/internal/errors"
)

// Fixture values served by FixtureService.
const (
	FixtureNextPath     = "http://localhost:8000/0a79f9d4-e5f4-11ef-84af-ea5c06feb90b/"
	FixturePath         = "c3830414-e574-11ef-967d-ea5c06feb90b"
	FixtureResponseCode = "40d92bde-49bc-4c54-bb49-75557247e820"
)

// FailMessage is the error text produced by FailingService.
const FailMessage = "should fail"

//go:embed testdata/*.json
var fixtures embed.FS

// callCounter records calls per endpoint name.
type callCounter struct {
	mu    sync.Mutex
	calls map[string]int
	order []string
}

func (c *callCounter) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[name]++
	c.order = append(c.order, name)
}

// Calls returns how many times the endpoint with the given name was called.
func (c *callCounter) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// Order returns the endpoint names in call order.
func (c *callCounter) Order() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// FixtureService answers each call with the JSON file named after the
// endpoint. A missing fixture fails with an invalid URL error.
type FixtureService struct {
	callCounter
	fsys fs.FS
}

// NewFixtureService serves the bundled nextpath and responsecode fixtures.
func NewFixtureService() *FixtureService {
	sub, err := fs.Sub(fixtures, "testdata")
	if err != nil {
		panic(err)
	}
	return &FixtureService{fsys: sub}
}

// NewFixtureServiceFS serves fixtures from fsys.
func NewFixtureServiceFS(fsys fs.FS) *FixtureService {
	return &FixtureService{fsys: fsys}
}

// Call implements network.Service.
func (s *FixtureService) Call(_ context.Context, endpoint api.Endpoint, out any) error {
	s.record(endpoint.Name)

	data, err := fs.ReadFile(s.fsys, endpoint.Name+".json")
	if err != nil {
		return errors.NewInvalidURL(err).WithEndpoint(endpoint.Name)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewDecodingError(err).WithEndpoint(endpoint.Name)
	}
	return nil
}

// FailingService fails every call with a generic "should fail" error.
type FailingService struct {
	callCounter
}

// Call implements network.Service.
func (s *FailingService) Call(_ context.Context, endpoint api.Endpoint, _ any) error {
	s.record(endpoint.Name)
	return errors.NewGeneric(FailMessage, nil).WithEndpoint(endpoint.Name)
}

// FuncService adapts a function to network.Service and counts calls.
type FuncService struct {
	callCounter
	Fn func(ctx context.Context, endpoint api.Endpoint, out any) error
}

// Call implements network.Service.
func (s *FuncService) Call(ctx context.Context, endpoint api.Endpoint, out any) error {
	s.record(endpoint.Name)
	return s.Fn(ctx, endpoint, out)
}

// SetupConfigHome points XDG_CONFIG_HOME at a fresh temporary directory and
// returns it.
func SetupConfigHome(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(t *testing.T, path string, v any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to decode %s: %v (content: %q)", path, err, data)
	}
}

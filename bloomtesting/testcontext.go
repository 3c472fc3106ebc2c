// Package bloomtesting provides the shared fixtures used by the filter
// package tests: a NOOP logger, a per test directory for backing files and
// deterministic key generators.
package bloomtesting

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
)

const (
	// DefaultFileExt is the extension given to generated backing files.
	DefaultFileExt = ".mmap"
)

type TestConfig struct {
	// TestLabelPrefix names the service in log output
	TestLabelPrefix string
	// FileExt defaults to DefaultFileExt
	FileExt string
}

type TestContext struct {
	Log logger.Logger
	T   *testing.T

	// Dir is removed when the test completes
	Dir string

	cfg   TestConfig
	files []string
}

func NewTestContext(t *testing.T, cfg TestConfig) *TestContext {
	if cfg.FileExt == "" {
		cfg.FileExt = DefaultFileExt
	}
	c := &TestContext{
		T:   t,
		Dir: t.TempDir(),
		cfg: cfg,
	}
	logger.New("NOOP")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// Path returns name joined to the test directory
func (c *TestContext) Path(name string) string {
	return filepath.Join(c.Dir, name)
}

// NewFilename returns a fresh, uuid named, path in the test directory and
// records it. It has the signature expected of a scaling filter's filename
// callback.
func (c *TestContext) NewFilename() (string, error) {
	name := c.Path(uuid.NewString() + c.cfg.FileExt)
	c.files = append(c.files, name)
	return name, nil
}

// Files returns every path handed out by NewFilename, oldest first.
func (c *TestContext) Files() []string {
	return append([]string(nil), c.files...)
}

// Key returns the key prefix%d for i
func Key(prefix string, i int) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, i))
}

// Keys returns the keys prefix0 .. prefix(n-1)
func Keys(prefix string, n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = Key(prefix, i)
	}
	return keys
}

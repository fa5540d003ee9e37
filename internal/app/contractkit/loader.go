package contractkit

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// SourceLoader resolves contract references against the configured contracts
// root and reads their raw source.
type SourceLoader struct {
	basePath string
}

func NewSourceLoader(basePath string) *SourceLoader {
	return &SourceLoader{basePath: basePath}
}

// Resolve turns a contract reference into an absolute location. Absolute
// references pass through untouched; relative ones are joined to the
// contracts root. A reference without an extension gets ".go" appended.
func (l *SourceLoader) Resolve(ref string) string {
	if filepath.Ext(ref) == "" {
		ref += ".go"
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(l.basePath, ref)
}

// Load reads the contract source. Callers convert the error into a failed
// validation result rather than letting it propagate as a fault.
func (l *SourceLoader) Load(location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read contract source %q", location)
	}
	return data, nil
}

package profile

import (
	"errors"
	"os"

	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// Load reads the YAML profile at path. An empty path yields
// optimize.DefaultConfig.
func Load(path string) (optimize.Config, error) {
	if path == "" {
		return optimize.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return optimize.Config{}, errors.Join(ErrReadProfile, err)
	}
	defer f.Close()

	return optimize.LoadProfile(f)
}

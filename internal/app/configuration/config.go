package configuration

import (
	"context"
	"os"

	"github.com/contractkit/contractkit/internal/app/contractkit"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces every environment override, e.g.
// CONTRACTKIT_CONTRACTS_BASE_PATH or CONTRACTKIT_MOCK_LOCALE.
const envPrefix = "CONTRACTKIT_"

// NewFromEnv builds the engine configuration from defaults overlaid with
// environment variables.
func NewFromEnv() (contractkit.Config, error) {
	return load("")
}

// Load reads a YAML configuration file over the defaults, then applies
// environment overrides on top. An empty path skips the file step.
func Load(path string) (contractkit.Config, error) {
	return load(path)
}

func load(path string) (contractkit.Config, error) {
	config := contractkit.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, errors.Wrap(err, "unable to read config file")
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, errors.Wrap(err, "unable to parse config file")
		}
	}

	ctx := context.Background()
	lookuper := envconfig.PrefixLookuper(envPrefix, envconfig.OsLookuper())
	if err := envconfig.ProcessWith(ctx, &config, lookuper); err != nil {
		return config, errors.Wrap(err, "process env config")
	}
	return config, nil
}

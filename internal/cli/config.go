package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/treescape/treescape/pkg/align"
	"github.com/treescape/treescape/pkg/cache"
	"github.com/treescape/treescape/pkg/landscape"
)

// defaultConfigPath is where commands look for a config when --config is
// not given.
const defaultConfigPath = "treescape.toml"

// Config holds project-level settings read from treescape.toml.
//
// Example:
//
//	operator = "spr"
//	weight = 1.0
//	landscape = "primates.landscape.json"
//
//	[sequences]
//	gorilla = "ACGGTCA"
//	human   = "ACGGACA"
type Config struct {
	// Operator is the rearrangement operator used for exploration
	// ("spr" or "nni"). Defaults to spr.
	Operator string `toml:"operator"`

	// Weight is the default edge weight for new landscapes.
	Weight float64 `toml:"weight"`

	// Anchor overrides the reroot taxon for parsed trees.
	Anchor string `toml:"anchor"`

	// Landscape is the default landscape document path.
	Landscape string `toml:"landscape"`

	// Name is the landscape display name.
	Name string `toml:"name"`

	// Sequences maps taxon labels to aligned character sequences. When
	// present, trees are scored by parsimony over this alignment.
	Sequences map[string]string `toml:"sequences"`
}

// loadConfig reads the config at path. An empty path falls back to
// treescape.toml in the working directory; a missing default config is not
// an error and yields an empty config.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// newScorer builds a parsimony scorer over the config's sequences, backed
// by the file cache unless noCache is set. It returns (nil, nil, nil) when
// the config carries no sequences: landscapes then stay unscored.
// The returned closer flushes the cache and must be called when done.
func newScorer(cfg *Config, noCache bool) (landscape.Scorer, func() error, error) {
	if len(cfg.Sequences) == 0 {
		return nil, nil, nil
	}
	a, err := align.New(cfg.Sequences)
	if err != nil {
		return nil, nil, fmt.Errorf("alignment: %w", err)
	}
	inner, err := landscape.NewParsimonyScorer(a)
	if err != nil {
		return nil, nil, fmt.Errorf("scorer: %w", err)
	}

	store := newCache(noCache)
	opts := cache.ScoreKeyOpts{Scorer: "parsimony", Sites: inner.Sites()}
	scorer := landscape.NewCachedScorer(inner, store, cache.NewDefaultKeyer(), opts)
	return scorer, store.Close, nil
}

// readTree resolves a tree argument that is either a file path or a Newick
// literal. File contents win when the path exists.
func readTree(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	if !strings.ContainsAny(arg, "();,") {
		return "", fmt.Errorf("no such file and not a Newick string: %s", arg)
	}
	return strings.TrimSpace(arg), nil
}

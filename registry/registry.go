package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-suite/types"
)

// Registry manages the gates that select which suites to run
type Registry struct {
	config Config
	gates  []types.GateConfig
	mu     sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log      log.Logger
	GateFile string
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.GateFile == "" {
		return nil, fmt.Errorf("gate file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config: cfg,
	}

	if err := r.loadGates(cfg.GateFile); err != nil {
		return nil, fmt.Errorf("failed to load gates: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "len(gates)", len(r.gates))

	return r, nil
}

// loadGates reads the gate file and resolves gate inheritance
func (r *Registry) loadGates(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	gateMap := make(map[string]types.GateConfig)
	for _, gate := range cfg.Gates {
		if gate.ID == "" {
			return fmt.Errorf("gate without id in %s", path)
		}
		if _, exists := gateMap[gate.ID]; exists {
			return fmt.Errorf("duplicate gate %q", gate.ID)
		}
		gateMap[gate.ID] = gate
	}

	for i := range cfg.Gates {
		if err := cfg.Gates[i].ResolveInherited(gateMap); err != nil {
			return fmt.Errorf("invalid gate inheritance: %w", err)
		}
	}

	r.gates = cfg.Gates
	return nil
}

// GetConfig returns the registry configuration
func (r *Registry) GetConfig() Config {
	return r.config
}

// GetGate retrieves a gate by ID, with inherited suites merged in
func (r *Registry) GetGate(id string) *types.GateConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.gates {
		if r.gates[i].ID == id {
			gate := r.gates[i]
			return &gate
		}
	}
	return nil
}

// GetGates returns the IDs of all gates in file order
func (r *Registry) GetGates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.gates))
	for _, gate := range r.gates {
		ids = append(ids, gate.ID)
	}
	return ids
}

// loadConfig decodes a gate file as TOML or YAML depending on its extension
func loadConfig(path string) (*types.GatesConfig, error) {
	log.Debug("Reading gate file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg types.GatesConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported gate file extension %q", ext)
	}

	return &cfg, nil
}

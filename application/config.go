package application

import (
	"fmt"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/protocol/directory"
	"github.com/coniks-sys/akd-go/utils/binutils"
)

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// TreeConfig holds the parameters recorded with the tree. They cannot
// change once the directory exists.
type TreeConfig struct {
	Hasher    string `toml:"hasher"`
	LabelBits uint32 `toml:"label_bits"`
}

// StorageConfig selects the kv backend of the directory.
type StorageConfig struct {
	// Backend is one of the Backend* constants.
	Backend string `toml:"backend"`
	// Path is the database directory of the on-disk backends.
	Path string `toml:"path,omitempty"`
	// CacheSize is the number of tree nodes cached; 0 disables the cache.
	CacheSize int `toml:"cache_size"`
}

// Config is the configuration of a directory instance,
// read from a TOML file.
type Config struct {
	Logger      *binutils.LoggerConfig `toml:"logger"`
	Tree        TreeConfig             `toml:"tree"`
	Parallelism azks.ParallelismConfig `toml:"parallelism"`
	Storage     StorageConfig          `toml:"storage"`
	// VRFKeyPath is the path of the VRF private key.
	VRFKeyPath string `toml:"vrf_key"`

	path     string
	encoding string
	loader   ConfigLoader
}

var _ AppConfig = (*Config)(nil)

// NewConfig returns the default configuration of a directory whose
// config file will be at file: a goleveldb database next to it and
// the default tree parameters.
func NewConfig(file string) *Config {
	tree := azks.DefaultConfig()
	return &Config{
		Logger: &binutils.LoggerConfig{
			EnableStacktrace: true,
			Environment:      "development",
			Path:             "akd.log",
		},
		Tree: TreeConfig{
			Hasher:    tree.HasherID,
			LabelBits: tree.LabelBits,
		},
		Parallelism: tree.Parallelism,
		Storage: StorageConfig{
			Backend:   BackendLevelDB,
			Path:      "akd.db",
			CacheSize: directory.DefaultCacheSize,
		},
		VRFKeyPath: "vrf.priv",
		path:       file,
		encoding:   "toml",
		loader:     newConfigLoader("toml"),
	}
}

// LoadConfig reads the configuration in file.
func LoadConfig(file string) (*Config, error) {
	conf := new(Config)
	if err := conf.Load(file, "toml"); err != nil {
		return nil, err
	}
	return conf, nil
}

// SaveConfig writes conf to file. It fails if file already exists.
func SaveConfig(file string, conf *Config) error {
	conf.path = file
	if conf.loader == nil {
		conf.encoding = "toml"
		conf.loader = newConfigLoader(conf.encoding)
	}
	return conf.Save()
}

// Load decodes the configuration in file with the given encoding
// and validates it.
func (conf *Config) Load(file, encoding string) error {
	conf.path = file
	conf.encoding = encoding
	conf.loader = newConfigLoader(encoding)
	if err := conf.loader.Decode(conf); err != nil {
		return err
	}
	return conf.Validate()
}

// Save writes the configuration to its path.
func (conf *Config) Save() error {
	return conf.loader.Encode(conf)
}

// GetPath returns the path of the config file.
func (conf *Config) GetPath() string {
	return conf.path
}

// Validate checks the values the directory cannot start without.
func (conf *Config) Validate() error {
	if conf.Logger == nil {
		return fmt.Errorf("Missing logger configuration")
	}
	switch conf.Logger.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("Logger environment must be either development or production (got %q)",
			conf.Logger.Environment)
	}
	if _, ok := backends[conf.Storage.Backend]; !ok {
		return fmt.Errorf("Unknown storage backend %q", conf.Storage.Backend)
	}
	if conf.Storage.CacheSize < 0 {
		return fmt.Errorf("Cache size must not be negative (got %d)", conf.Storage.CacheSize)
	}
	if conf.Parallelism.Workers < 0 || conf.Parallelism.Threshold < 0 {
		return fmt.Errorf("Parallelism settings must not be negative")
	}
	if conf.VRFKeyPath == "" {
		return fmt.Errorf("Missing VRF key path")
	}
	return nil
}

// DirectoryConfig returns the directory.Config described by conf.
func (conf *Config) DirectoryConfig() directory.Config {
	return directory.Config{
		Tree: azks.Config{
			HasherID:    conf.Tree.Hasher,
			LabelBits:   conf.Tree.LabelBits,
			Parallelism: conf.Parallelism,
		},
		CacheSize: conf.Storage.CacheSize,
	}
}

// NewLogger builds the logger described by conf, writing its file next
// to the config file.
func (conf *Config) NewLogger() *binutils.Logger {
	lc := *conf.Logger
	if lc.Path != "" {
		lc.Path = resolve(lc.Path, conf.path)
	}
	return binutils.NewLogger(&lc)
}

package application

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/coniks-sys/akd-go/crypto/vrf"
	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/coniks-sys/akd-go/storage/kv/leveldbkv"
	"github.com/coniks-sys/akd-go/storage/kv/tmdbkv"
	"github.com/coniks-sys/akd-go/utils"
)

// Storage backends selectable in StorageConfig.
const (
	BackendLevelDB       = "leveldb"
	BackendMemory        = "memory"
	BackendTMMemory      = "tmdb-memory"
	BackendTMGoLevelDB   = "tmdb-goleveldb"
	tmGoLevelDBName      = "akd"
	defaultStorageFolder = "akd.db"
)

var backends = map[string]func(path string) (kv.DB, error){
	BackendLevelDB: leveldbkv.OpenDB,
	BackendMemory: func(string) (kv.DB, error) {
		return leveldbkv.OpenMem()
	},
	BackendTMMemory: func(string) (kv.DB, error) {
		return tmdbkv.OpenMem(), nil
	},
	BackendTMGoLevelDB: func(path string) (kv.DB, error) {
		return tmdbkv.OpenGoLevelDB(tmGoLevelDBName, path)
	},
}

func resolve(path, file string) string {
	if file == "" {
		return path
	}
	return utils.ResolvePath(path, file)
}

// OpenStorage opens the kv backend selected by conf.
func (conf *Config) OpenStorage() (kv.DB, error) {
	open, ok := backends[conf.Storage.Backend]
	if !ok {
		return nil, fmt.Errorf("Unknown storage backend %q", conf.Storage.Backend)
	}
	path := conf.Storage.Path
	if path == "" {
		path = defaultStorageFolder
	}
	db, err := open(filepath.Clean(resolve(path, conf.path)))
	if err != nil {
		return nil, fmt.Errorf("Cannot open %s storage: %v", conf.Storage.Backend, err)
	}
	return db, nil
}

// LoadVRFKey reads the VRF private key at conf.VRFKeyPath.
func (conf *Config) LoadVRFKey() (vrf.PrivateKey, error) {
	buf, err := ioutil.ReadFile(resolve(conf.VRFKeyPath, conf.path))
	if err != nil {
		return nil, fmt.Errorf("Cannot read VRF key: %v", err)
	}
	sk, err := vrf.NewPrivateKey(buf)
	if err != nil {
		return nil, fmt.Errorf("VRF key must be %d bytes (got %d)", vrf.PrivateKeySize, len(buf))
	}
	return sk, nil
}

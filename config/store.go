package config

type StoreConfig struct {
	// SqlitePath is the file path of the knowledge base database.
	// The directory is created on first open.
	SqlitePath string `env:"STORE_SQLITE_PATH"`

	// PageCacheDir is where raw fetched page bodies are saved.
	PageCacheDir string `env:"PAGE_CACHE_DIR"`
}

func NewStoreConfig() *StoreConfig {
	return &StoreConfig{
		SqlitePath:   "data/archivist.db",
		PageCacheDir: "data/pages",
	}
}

func (c *StoreConfig) Resolve() error {
	return resolveConfig(c)
}

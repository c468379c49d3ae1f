package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/jai/data/db/jai.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/jai/data/models/paraphrase-MiniLM-L3-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.OllamaModel == "" {
		cfg.Embedding.OllamaModel = "nomic-embed-text"
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 60
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "legalbot_cookie"
	}
	if cfg.Auth.CookieKey == "" {
		cfg.Auth.CookieKey = "supersecret_cookie_key"
	}
	if cfg.Auth.ExpiryDays == 0 {
		cfg.Auth.ExpiryDays = 7
	}
	if cfg.Chat.Backend == "" {
		cfg.Chat.Backend = "memory"
	}
	if cfg.Chat.RedisAddr == "" {
		cfg.Chat.RedisAddr = "localhost:6379"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".yaml", ".yml", ".json", ".csv", ".xlsx"}
	}
}

package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8086
	}
	if cfg.Corpus.WorkbookPath == "" {
		cfg.Corpus.WorkbookPath = "/usr/local/var/kotae/data/corpus.xlsx"
	}
	if cfg.Session.DatabasePath == "" {
		cfg.Session.DatabasePath = "/usr/local/var/kotae/data/db/session.db"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Analysis.KBLimit == 0 {
		cfg.Analysis.KBLimit = 10
	}
	if cfg.Analysis.ScriptLimit == 0 {
		cfg.Analysis.ScriptLimit = 5
	}
}

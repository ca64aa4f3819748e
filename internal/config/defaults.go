package config

// ApplyDefaults fills zero-valued fields with working defaults. The
// real-word knobs are corpus-specific tuning parameters; the defaults are
// deliberately conservative and expected to be recalibrated per deployment.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxTextLength == 0 {
		cfg.Server.MaxTextLength = 500
	}
	if cfg.Resources.LexiconPath == "" {
		cfg.Resources.LexiconPath = "resources/words.txt"
	}
	if cfg.Resources.NgramPath == "" {
		cfg.Resources.NgramPath = "resources/ngrams.txt"
	}
	if cfg.Analysis.MaxEditDistance == 0 {
		cfg.Analysis.MaxEditDistance = 2
	}
	if cfg.Analysis.MaxCandidates == 0 {
		cfg.Analysis.MaxCandidates = 5
	}
	if cfg.Analysis.MinWordLength == 0 {
		cfg.Analysis.MinWordLength = 3
	}
	if cfg.Analysis.RealWordThreshold == 0 {
		cfg.Analysis.RealWordThreshold = 1e-4
	}
	if cfg.Analysis.RealWordGain == 0 {
		cfg.Analysis.RealWordGain = 10
	}
	if cfg.Grammar.TaggerTimeoutMS == 0 {
		cfg.Grammar.TaggerTimeoutMS = 2000
	}
}

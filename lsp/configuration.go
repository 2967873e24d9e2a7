package lsp

import (
	"fmt"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/log"
)

// GetConfig returns a snapshot of the server configuration
func (s *Server) GetConfig() config.Config {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// SetConfig replaces the server configuration
func (s *Server) SetConfig(cfg config.Config) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config = cfg
}

// ConfigPath returns the config file the current config was loaded from, if any
func (s *Server) ConfigPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.configPath
}

// LoadWorkspaceConfig reads the config file at the workspace root. Without
// a root or a config file the defaults apply. An invalid file leaves the
// current config in place. Editor settings received earlier are replaced.
func (s *Server) LoadWorkspaceConfig() error {
	root := s.RootPath()
	if root == "" {
		log.Info("No workspace root, using default config")
		return nil
	}

	cfg, path, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load workspace config: %w", err)
	}

	s.configMu.Lock()
	s.config = cfg
	s.configPath = path
	s.configMu.Unlock()

	log.SetLevel(cfg.Level())
	if path == "" {
		log.Info("No config file in %s, using defaults", root)
	} else {
		log.Info("Loaded config from %s", path)
	}
	return nil
}

// IsTemplateFile reports whether path is a Slim template that the config
// selects, relative to the workspace root
func (s *Server) IsTemplateFile(path string) bool {
	if !analysis.IsTemplatePath(path) {
		return false
	}
	return s.GetConfig().MatchesPath(s.RootPath(), path)
}

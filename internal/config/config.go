// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Library   LibraryConfig
	Catalog   CatalogConfig
	Hierarchy HierarchyConfig
	Match     MatchConfig
	Tags      TagsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataDir is the base directory for the tag store, caches, and taxonomy
	// files.
	DataDir string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// LibraryConfig holds music library configuration.
type LibraryConfig struct {
	// Path is the root of the local music library to scan.
	Path string
	// RequireMatch stops processing a release when no catalog match is found.
	RequireMatch bool
	// ForceUpdate rewrites tags even when the stored record says they are
	// already up to date.
	ForceUpdate bool
	// LogMissingMatches records releases without a catalog match in the store.
	LogMissingMatches bool
}

// CatalogConfig holds scraped-catalog access configuration.
type CatalogConfig struct {
	// URL of the full catalog document. Empty means cache-only operation.
	URL string
	// CacheFile is where the catalog snapshot is persisted.
	CacheFile string
	// CacheDuration is how long a snapshot stays fresh.
	CacheDuration time.Duration
}

// HierarchyConfig holds genre taxonomy configuration.
type HierarchyConfig struct {
	// Enabled toggles hierarchical parent-genre tagging.
	Enabled bool
	// TreeFile is the taxonomy document path.
	TreeFile string
	// ExcludedFile is the excluded meta-genres document path.
	ExcludedFile string
}

// MatchConfig holds release matching thresholds.
type MatchConfig struct {
	// SimilarityThreshold is the minimum combined score for a primary match.
	SimilarityThreshold float64
	// FlexibleArtistMatching admits high title similarity despite low artist
	// similarity (aliases, collaborations).
	FlexibleArtistMatching bool
	// TitleMatchThreshold is the minimum title score for flexible matching.
	TitleMatchThreshold float64
}

// TagsConfig caps each resolved tag list. A value of zero or below suppresses
// the field entirely.
type TagsConfig struct {
	MaxGenres          int
	MaxSecondaryGenres int
	MaxDescriptors     int
	MaxGroupings       int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := flag.String("data-dir", "", "Base path for data storage")
	libraryPath := flag.String("library-path", "", "Path to the music library")
	catalogURL := flag.String("catalog-url", "", "URL of the scraped catalog document")
	cacheDuration := flag.String("cache-duration", "", "Catalog cache freshness window (default: 1h)")
	requireMatch := flag.String("require-match", "", "Skip releases with no catalog match (default: false)")
	force := flag.String("force", "", "Rewrite tags even when already up to date (default: false)")
	useHierarchy := flag.String("use-hierarchy", "", "Enable hierarchical parent-genre tagging (default: true)")
	similarityThreshold := flag.String("similarity-threshold", "", "Minimum combined match score (default: 0.8)")
	titleMatchThreshold := flag.String("title-match-threshold", "", "Minimum title score for flexible matching (default: 0.95)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataDir:     getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Library: LibraryConfig{
			Path:              getConfigValue(*libraryPath, "LIBRARY_PATH", ""),
			RequireMatch:      getBoolConfigValue(*requireMatch, "REQUIRE_MATCH", false),
			ForceUpdate:       getBoolConfigValue(*force, "FORCE_UPDATE", false),
			LogMissingMatches: getBoolConfigValue("", "LOG_MISSING_MATCHES", true),
		},
		Catalog: CatalogConfig{
			URL:       getConfigValue(*catalogURL, "CATALOG_URL", ""),
			CacheFile: getConfigValue("", "CATALOG_CACHE_FILE", ""),
		},
		Hierarchy: HierarchyConfig{
			Enabled:      getBoolConfigValue(*useHierarchy, "USE_HIERARCHY", true),
			TreeFile:     getConfigValue("", "GENRE_TREE_FILE", ""),
			ExcludedFile: getConfigValue("", "EXCLUDED_GENRES_FILE", ""),
		},
		Match: MatchConfig{
			SimilarityThreshold:    getFloatConfigValue(*similarityThreshold, "SIMILARITY_THRESHOLD", 0.8),
			FlexibleArtistMatching: getBoolConfigValue("", "FLEXIBLE_ARTIST_MATCHING", true),
			TitleMatchThreshold:    getFloatConfigValue(*titleMatchThreshold, "TITLE_MATCH_THRESHOLD", 0.95),
		},
		Tags: TagsConfig{
			MaxGenres:          getIntConfigValue("", "MAX_GENRES", 10),
			MaxSecondaryGenres: getIntConfigValue("", "MAX_SECONDARY_GENRES", 20),
			MaxDescriptors:     getIntConfigValue("", "MAX_DESCRIPTORS", 60),
			MaxGroupings:       getIntConfigValue("", "MAX_GROUPINGS", 30),
		},
	}

	// Parse cache duration.
	cacheDurationStr := getConfigValue(*cacheDuration, "CATALOG_CACHE_DURATION", "1h")
	d, err := time.ParseDuration(cacheDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid cache duration %q: %w", cacheDurationStr, err)
	}
	cfg.Catalog.CacheDuration = d

	// Expand and default data-relative paths.
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.App.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if c.Match.SimilarityThreshold < 0 || c.Match.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %g", c.Match.SimilarityThreshold)
	}
	if c.Match.TitleMatchThreshold < 0 || c.Match.TitleMatchThreshold > 1 {
		return fmt.Errorf("title match threshold must be in [0,1], got %g", c.Match.TitleMatchThreshold)
	}

	// Library path can be empty - single-release tagging passes paths directly.

	return nil
}

// expandPaths expands ~ in the data dir and library path and fills in the
// data-relative defaults for the cache and taxonomy files.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir, err := expandPath(c.App.DataDir, filepath.Join(homeDir, "rymtag", "data"))
	if err != nil {
		return err
	}
	c.App.DataDir = dataDir

	if c.Library.Path != "" {
		expanded, err := expandPath(c.Library.Path, "")
		if err != nil {
			return err
		}
		c.Library.Path = expanded
	}

	if c.Catalog.CacheFile == "" {
		c.Catalog.CacheFile = filepath.Join(dataDir, "rym-catalog-cache.json")
	}
	if c.Hierarchy.TreeFile == "" {
		c.Hierarchy.TreeFile = filepath.Join(dataDir, "rym-genre-tree.json")
	}
	if c.Hierarchy.ExcludedFile == "" {
		c.Hierarchy.ExcludedFile = filepath.Join(dataDir, "excluded-meta-genres.json")
	}

	return nil
}

// StorePath returns the tag store directory under the data dir.
func (c *Config) StorePath() string {
	return filepath.Join(c.App.DataDir, "store")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}

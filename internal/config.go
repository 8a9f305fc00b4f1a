package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/oracle"
	"github.com/starford/notesift/internal/ruminate"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Cache    CacheConfig       `yaml:"cache"`
	Index    IndexConfig       `yaml:"index"`
	Oracle   OracleConfig      `yaml:"oracle"`
	Ingest   IngestConfig      `yaml:"ingest"`
	Classify ClassifyConfig    `yaml:"classify"`
	Ruminate RuminateConfig    `yaml:"ruminate"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.App, &c.Store, &c.Cache, &c.Index, &c.Oracle, &c.Ingest, &c.Classify, &c.Ruminate,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig locates the document store. FolderID is relative to Root.
type StoreConfig struct {
	Root     string `yaml:"root"`
	FolderID string `yaml:"folder_id"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.FolderID, validation.Required),
	)
}

// CacheConfig holds the snapshot file location.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig holds SQLite search index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// OracleConfig configures the Ollama-backed decision oracle.
// MemoSize 0 disables answer memoisation.
type OracleConfig struct {
	URL       string        `yaml:"url"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
	MemoSize  int           `yaml:"memo_size"`
}

// Validate validates the oracle configuration.
func (c *OracleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.MemoSize, validation.Min(0)),
	)
}

// IngestConfig controls ingestion runs. DocumentLimit 0 means no limit.
// CheckInterval is how often serve mode asks whether a rebuild is due.
type IngestConfig struct {
	DocumentLimit int           `yaml:"document_limit"`
	MiscNotesName string        `yaml:"misc_notes_name"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

// Validate validates the ingest configuration.
func (c *IngestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DocumentLimit, validation.Min(0)),
		validation.Field(&c.MiscNotesName, validation.Required),
		validation.Field(&c.CheckInterval, validation.Required, validation.Min(time.Minute)),
	)
}

// ClassifyConfig controls the classify command. Limit 0 classifies every note.
type ClassifyConfig struct {
	DefaultLabel string `yaml:"default_label"`
	Limit        int    `yaml:"limit"`
}

// Validate validates the classify configuration.
func (c *ClassifyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Min(0)),
	)
}

// RuminateConfig controls project inference.
type RuminateConfig struct {
	NotesPerAsk int `yaml:"notes_per_ask"`
}

// Validate validates the ruminate configuration.
func (c *RuminateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesPerAsk, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Root:     "./store",
			FolderID: "notes",
		},
		Cache: CacheConfig{
			Path: "./data/notes.json",
		},
		Index: IndexConfig{
			Path: "./data/notesift.db",
		},
		Oracle: OracleConfig{
			URL:       oracle.DefaultURL,
			Model:     oracle.DefaultModel,
			Timeout:   60 * time.Second,
			MaxTokens: oracle.DefaultMaxTokens,
			MemoSize:  512,
		},
		Ingest: IngestConfig{
			MiscNotesName: models.MiscNotesName,
			CheckInterval: time.Hour,
		},
		Classify: ClassifyConfig{
			DefaultLabel: "general",
			Limit:        5,
		},
		Ruminate: RuminateConfig{
			NotesPerAsk: ruminate.DefaultNotesPerAsk,
		},
	}
}

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

var ConfigGlobal = DefaultConfig()

type Config struct {
	// backend
	BackendUrl       string `yaml:"backendUrl" validate:"required,url"`
	BackendTimeoutMs int32  `yaml:"backendTimeoutMs" validate:"gt=0"`

	// console server
	Port      string `yaml:"port" validate:"required,numeric"`
	LoginUser string `yaml:"loginUser"`
	// bcrypt hash of the operator password, required when loginUser is set
	LoginPasswordHash string `yaml:"loginPasswordHash" validate:"required_with=LoginUser"`

	// db
	DbSqlite string `yaml:"dbSqlite"`

	// status poll
	StatusIntervalMs int32 `yaml:"statusIntervalMs" validate:"gt=0"`
	StatusFailLimit  int32 `yaml:"statusFailLimit" validate:"gt=0"`

	// banner / settle delays
	MessageTimeoutMs int32 `yaml:"messageTimeoutMs" validate:"gte=0"`
	ClearSettleMs    int32 `yaml:"clearSettleMs" validate:"gte=0"`
	AbortSettleMs    int32 `yaml:"abortSettleMs" validate:"gte=0"`

	// upload
	AcceptWebp bool `yaml:"acceptWebp"`

	// initial field values
	Tiling TilingDefaults `yaml:"tiling"`
}

// TilingDefaults initial values of the tiling/mask fields on session start.
type TilingDefaults struct {
	SlicerName    string  `yaml:"slicerName" validate:"oneof=Simple NyanTile USDUS"`
	TileSize      int     `yaml:"tileSize" validate:"gt=0"`
	TileOverlap   int     `yaml:"tileOverlap" validate:"gte=0"`
	Uniform       bool    `yaml:"uniform"`
	MaskFeather   int     `yaml:"maskFeather" validate:"gte=0"`
	MaskPadding   int     `yaml:"maskPadding" validate:"gte=0"`
	AutoFeather   bool    `yaml:"autoFeather"`
	AutoPadding   bool    `yaml:"autoPadding"`
	UpscaleFactor float64 `yaml:"upscaleFactor" validate:"gt=0"`
	TileNoise     string  `yaml:"tileNoise" validate:"oneof=local global"`
}

func DefaultConfig() *Config {
	return &Config{
		BackendUrl:       "http://127.0.0.1:7777",
		BackendTimeoutMs: 60000,
		Port:             "7778",
		DbSqlite:         "./history.sqlite3",
		StatusIntervalMs: 1000,
		StatusFailLimit:  180,
		MessageTimeoutMs: 5000,
		ClearSettleMs:    100,
		AbortSettleMs:    500,
		Tiling: TilingDefaults{
			SlicerName:    SLICER_SIMPLE,
			TileSize:      768,
			TileOverlap:   128,
			Uniform:       true,
			MaskFeather:   16,
			MaskPadding:   32,
			AutoPadding:   true,
			UpscaleFactor: 2,
			TileNoise:     NOISE_LOCAL,
		},
	}
}

// InitConfig load config file over the defaults, an empty path keeps the defaults
func InitConfig(fn string) error {
	cfg := DefaultConfig()
	if fn != "" {
		data, err := ioutil.ReadFile(fn)
		if err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s err=%w", fn, err)
		}
	}
	if url := os.Getenv(BACKEND_URL); url != "" {
		cfg.BackendUrl = url
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ConfigGlobal = cfg
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) EnableLogin() bool {
	return c.LoginUser != ""
}

func (c *Config) EnableHistory() bool {
	return c.DbSqlite != ""
}

func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalMs) * time.Millisecond
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMs) * time.Millisecond
}

func (c *Config) MessageTimeout() time.Duration {
	return time.Duration(c.MessageTimeoutMs) * time.Millisecond
}

func (c *Config) ClearSettle() time.Duration {
	return time.Duration(c.ClearSettleMs) * time.Millisecond
}

func (c *Config) AbortSettle() time.Duration {
	return time.Duration(c.AbortSettleMs) * time.Millisecond
}

// AcceptedImageTypes upload mime allow-list
func (c *Config) AcceptedImageTypes() []string {
	types := []string{MIME_PNG, MIME_JPEG}
	if c.AcceptWebp {
		types = append(types, MIME_WEBP)
	}
	return types
}

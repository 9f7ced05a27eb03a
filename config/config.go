package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyServerPort        = "server.port"
	KeyServerAllowOrigin = "server.allow_origin"
	KeySigningSecret     = "auth.signing_secret"
	KeyGoogleCredentials = "google.credentials"
	KeyRootFolderID      = "drive.root_folder_id"
	KeySheetsRange       = "drive.sheets_range"
	KeyShareAuto         = "share.auto"
	KeyShareRole         = "share.role"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Google GoogleConfig `mapstructure:"google" validate:"required"`
	Drive  DriveConfig  `mapstructure:"drive" validate:"required"`
	Share  ShareConfig  `mapstructure:"share"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	AllowOrigin string `mapstructure:"allow_origin"`
}

type AuthConfig struct {
	// SigningSecret is required by serve and sign; other commands run
	// without it, so it is checked there rather than here.
	SigningSecret string `mapstructure:"signing_secret"`
}

type GoogleConfig struct {
	Credentials string `mapstructure:"credentials" validate:"required"`
}

type DriveConfig struct {
	RootFolderID string `mapstructure:"root_folder_id" validate:"required"`
	SheetsRange  string `mapstructure:"sheets_range" validate:"required"`
}

type ShareConfig struct {
	Auto bool   `mapstructure:"auto"`
	Role string `mapstructure:"role" validate:"oneof=reader commenter writer"`
}

// SetDefaults sets default values and environment bindings on the global
// Viper instance. The environment variable names match the original
// deployment contract of the service.
func SetDefaults() {
	applyDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	applyDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# sheetlog configuration
server:
  port: 8080
  # allow_origin: "https://example.com"

auth:
  signing_secret: ""   # or env SIGNING_SECRET

google:
  credentials: "/etc/sheetlog/credentials.json"   # or env GOOGLE_APPLICATION_CREDENTIALS

drive:
  root_folder_id: ""   # or env ROOT_FOLDER_ID
  sheets_range: "Logs!A:G"

share:
  auto: true
  role: writer
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSheetsRange(cfg.Drive.SheetsRange); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeyServerAllowOrigin, "")
	v.SetDefault(KeySheetsRange, "Logs!A:G")
	v.SetDefault(KeyShareAuto, true)
	v.SetDefault(KeyShareRole, "writer")

	// Environment overrides used by the hosted deployment.
	_ = v.BindEnv(KeySigningSecret, "SIGNING_SECRET")
	_ = v.BindEnv(KeyGoogleCredentials, "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv(KeyRootFolderID, "ROOT_FOLDER_ID")
	_ = v.BindEnv(KeySheetsRange, "SHEETS_RANGE")
	_ = v.BindEnv(KeyServerAllowOrigin, "ALLOW_ORIGIN")
}

func validateSheetsRange(value string) error {
	sheet, _, found := strings.Cut(strings.TrimSpace(value), "!")
	if !found {
		return fmt.Errorf("validation failed: drive.sheets_range %q must be of the form Sheet!A:G", value)
	}
	if strings.TrimSpace(sheet) == "" {
		return fmt.Errorf("validation failed: drive.sheets_range %q is missing the sheet name", value)
	}
	return nil
}

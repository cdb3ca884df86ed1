// Package config loads and validates the two server roles' configuration:
// NamingConfig for the naming server, StorageConfig for a storage server.
// Both are loaded the same way: viper merges a YAML file with DISTFS_*
// environment overrides, ApplyDefaults fills in anything left unset, and
// go-playground/validator enforces struct-tag constraints.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// NamingConfig configures the naming server's two skeletons.
type NamingConfig struct {
	// ServicePort is the well-known port clients connect to.
	ServicePort int `mapstructure:"service_port" validate:"required,gt=0"`
	// RegistrationPort is the well-known port storage servers connect to.
	RegistrationPort int `mapstructure:"registration_port" validate:"required,gt=0"`
	// BindHost is the local interface both skeletons listen on; empty
	// binds all interfaces.
	BindHost string `mapstructure:"bind_host"`
	// MaxConnRate caps new connections accepted per second on each
	// skeleton; 0 leaves the accept loop unthrottled.
	MaxConnRate uint `mapstructure:"max_conn_rate"`
	// LogLevel is the minimum level internal/logger emits.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// StorageConfig configures one storage server.
type StorageConfig struct {
	// LocalRoot is the directory this server serves content from.
	LocalRoot string `mapstructure:"local_root" validate:"required"`
	// NamingAddress is the naming server's registration interface,
	// host:port.
	NamingAddress string `mapstructure:"naming_address" validate:"required"`
	// AdvertiseHost is the externally routable hostname this server
	// advertises to the naming server and to clients.
	AdvertiseHost string `mapstructure:"advertise_host" validate:"required"`
	// BindHost is the local interface both skeletons listen on; empty
	// binds all interfaces.
	BindHost string `mapstructure:"bind_host"`
	// DataPort and CommandPort pin the skeletons' ports; zero lets the
	// process-wide counter assign one.
	DataPort    int `mapstructure:"data_port"`
	CommandPort int `mapstructure:"command_port"`
	// MaxConnRate caps new connections accepted per second on each
	// skeleton; 0 leaves the accept loop unthrottled.
	MaxConnRate uint `mapstructure:"max_conn_rate"`
	// LogLevel is the minimum level internal/logger emits.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// envPrefix is the environment variable prefix both config loaders use:
// e.g. DISTFS_NAMING_ADDRESS overrides naming_address.
const envPrefix = "DISTFS"

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	return v
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// LoadNaming loads and validates a NamingConfig. configPath may be empty to
// use the default search path ("./config.yaml").
func LoadNaming(configPath string) (*NamingConfig, error) {
	v := newViper(configPath)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg NamingConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal naming config: %w", err)
	}
	ApplyNamingDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return &cfg, nil
}

// LoadStorage loads and validates a StorageConfig.
func LoadStorage(configPath string) (*StorageConfig, error) {
	v := newViper(configPath)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg StorageConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal storage config: %w", err)
	}
	ApplyStorageDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return &cfg, nil
}

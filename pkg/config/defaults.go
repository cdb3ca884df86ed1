package config

import "github.com/distfs/distfs/pkg/naming"

// ApplyNamingDefaults fills in any unspecified NamingConfig fields.
func ApplyNamingDefaults(cfg *NamingConfig) {
	if cfg.ServicePort == 0 {
		cfg.ServicePort = naming.ServicePort
	}
	if cfg.RegistrationPort == 0 {
		cfg.RegistrationPort = naming.RegistrationPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
}

// ApplyStorageDefaults fills in any unspecified StorageConfig fields.
func ApplyStorageDefaults(cfg *StorageConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if cfg.AdvertiseHost == "" {
		cfg.AdvertiseHost = cfg.BindHost
	}
	// DataPort and CommandPort default to 0, letting the process-wide
	// port counter in pkg/rmi assign one.
}

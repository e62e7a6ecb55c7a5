package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"prabhas.dev/medication-box-service/pkg/common"
)

// Config is the whole process configuration, loaded once at startup. Load
// fails on anything invalid so a misconfigured gateway never starts in a
// degraded state.
type Config struct {
	DBType string

	HTTPHostPort string

	AdminUsername string
	AdminPassword string

	DeviceRate  float64
	DeviceBurst int

	CacheTTL time.Duration

	VapidPublicKey  string
	VapidPrivateKey string
	PushSubject     string
	NotifyWorkers   int
}

const (
	DBTypeFile   = "file"
	DBTypeMemory = "memory"

	defaultHTTPHostPort = ":3000"
	defaultDeviceRate   = 5.0
	defaultDeviceBurst  = 10
)

func Load() (*Config, error) {
	cfg := &Config{
		DBType:          strings.TrimSpace(os.Getenv(common.EnvKeyMedboxDBType)),
		HTTPHostPort:    strings.TrimSpace(os.Getenv(common.EnvKeyMedboxHttpHostPort)),
		AdminUsername:   os.Getenv(common.EnvKeyMedboxAdminUsername),
		AdminPassword:   os.Getenv(common.EnvKeyMedboxAdminPassword),
		VapidPublicKey:  strings.TrimSpace(os.Getenv(common.EnvKeyMedboxVapidPublicKey)),
		VapidPrivateKey: strings.TrimSpace(os.Getenv(common.EnvKeyMedboxVapidPrivateKey)),
		PushSubject:     strings.TrimSpace(os.Getenv(common.EnvKeyMedboxPushSubject)),
	}

	switch cfg.DBType {
	case DBTypeFile, DBTypeMemory:
	case "":
		return nil, fmt.Errorf("%s is required, use %q or %q", common.EnvKeyMedboxDBType, DBTypeFile, DBTypeMemory)
	default:
		return nil, fmt.Errorf("unknown %s: %q", common.EnvKeyMedboxDBType, cfg.DBType)
	}

	if cfg.HTTPHostPort == "" {
		cfg.HTTPHostPort = defaultHTTPHostPort
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("%s and %s must both be set", common.EnvKeyMedboxAdminUsername, common.EnvKeyMedboxAdminPassword)
	}

	var err error

	cfg.DeviceRate = defaultDeviceRate
	if raw := strings.TrimSpace(os.Getenv(common.EnvKeyMedboxDeviceRate)); raw != "" {
		if cfg.DeviceRate, err = strconv.ParseFloat(raw, 64); err != nil || cfg.DeviceRate <= 0 {
			return nil, fmt.Errorf("invalid %s: %q, should be a positive float", common.EnvKeyMedboxDeviceRate, raw)
		}
	}

	cfg.DeviceBurst = defaultDeviceBurst
	if raw := strings.TrimSpace(os.Getenv(common.EnvKeyMedboxDeviceBurst)); raw != "" {
		var burst int64
		if burst, err = strconv.ParseInt(raw, 10, 64); err != nil || burst <= 0 {
			return nil, fmt.Errorf("invalid %s: %q, should be a positive int", common.EnvKeyMedboxDeviceBurst, raw)
		}
		cfg.DeviceBurst = int(burst)
	}

	if raw := strings.TrimSpace(os.Getenv(common.EnvKeyMedboxCacheTTLSeconds)); raw != "" {
		var seconds int64
		if seconds, err = strconv.ParseInt(raw, 10, 64); err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid %s: %q, should be a non-negative int", common.EnvKeyMedboxCacheTTLSeconds, raw)
		}
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	// Push is optional, but half a key pair is a deployment mistake.
	if (cfg.VapidPublicKey == "") != (cfg.VapidPrivateKey == "") {
		return nil, fmt.Errorf("%s and %s must be set together", common.EnvKeyMedboxVapidPublicKey, common.EnvKeyMedboxVapidPrivateKey)
	}

	cfg.NotifyWorkers = 1
	if raw := strings.TrimSpace(os.Getenv(common.EnvKeyMedboxNotifyWorkers)); raw != "" {
		var workers int64
		if workers, err = strconv.ParseInt(raw, 10, 64); err != nil || workers <= 0 {
			return nil, fmt.Errorf("invalid %s: %q, should be a positive int", common.EnvKeyMedboxNotifyWorkers, raw)
		}
		cfg.NotifyWorkers = int(workers)
	}

	return cfg, nil
}

// PushEnabled reports whether a VAPID key pair was configured.
func (c *Config) PushEnabled() bool {
	return c.VapidPublicKey != "" && c.VapidPrivateKey != ""
}

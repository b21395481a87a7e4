package push_dispatcher_config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gomezmon2/latidos/internal/obs"
	pginfra "github.com/gomezmon2/latidos/internal/repository/postgres"
)

type Push struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subject         string `mapstructure:"subject"`
	TTL             int    `mapstructure:"ttl"`
}

type Dispatch struct {
	Tick        time.Duration `mapstructure:"tick"`
	BatchLimit  int           `mapstructure:"batch_limit"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (l Log) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  l.Level,
		Pretty: l.Pretty,
		App:    "push-dispatcher",
		Env:    "dev",
		Ver:    "dev",
	}
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
}

func (o OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      o.Enable,
		Endpoint:    o.OTLPEndpoint,
		ServiceName: o.ServiceName,
		SampleRatio: o.SampleRatio,
	}
}

type Config struct {
	DB       pginfra.Config `mapstructure:"db"`
	Push     Push           `mapstructure:"push"`
	Dispatch Dispatch       `mapstructure:"dispatch"`
	Log      Log            `mapstructure:"log"`
	OTEL     OTEL           `mapstructure:"otel"`
}

// Validate enforces the fail-fast startup contract: a worker without
// complete VAPID credentials must not run a degraded cycle.
func (c *Config) Validate() error {
	if c.Push.VAPIDPublicKey == "" {
		return errors.New("push.vapid_public_key is required")
	}
	if c.Push.VAPIDPrivateKey == "" {
		return errors.New("push.vapid_private_key is required")
	}
	if c.Push.Subject == "" {
		return errors.New("push.subject is required")
	}
	if !strings.HasPrefix(c.Push.Subject, "mailto:") && !strings.HasPrefix(c.Push.Subject, "https://") {
		return fmt.Errorf("push.subject must be a mailto: or https: URI, got %q", c.Push.Subject)
	}
	if c.DB.URL == "" {
		return errors.New("db.dsn is required")
	}
	return nil
}

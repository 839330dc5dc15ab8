// Package config loads the YAML configuration of the ckb-rpc command.
//
//	node:
//	  url: http://localhost:8114
//	  timeout: 30s
//	  debug: false
//	rate_limit:
//	  rate: 20
//	  burst: 5
//	registry:
//	  endpoints: [localhost:2379]
//	  network: testnet
//	  balancer: consistent_hash
//	  key: wallet-1
//	server:
//	  listen: :8114
//	  advertise_url: http://10.0.0.5:8114
//	  ttl: 10
//	metrics:
//	  listen: :9100
//	log:
//	  level: info
//
// Missing keys keep the values of Default.
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"ckb-rpc/loadbalance"
)

// Config 命令行工具配置
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Registry  RegistryConfig  `yaml:"registry"`
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type NodeConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Debug   bool          `yaml:"debug"`
}

// RateLimitConfig caps outgoing calls per second. Rate 0 disables it.
type RateLimitConfig struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// RegistryConfig enables node discovery through etcd when Endpoints is set.
type RegistryConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Network   string   `yaml:"network"`
	Balancer  string   `yaml:"balancer"`
	Key       string   `yaml:"key"`
}

type ServerConfig struct {
	Listen       string `yaml:"listen"`
	AdvertiseURL string `yaml:"advertise_url"`
	TTL          int64  `yaml:"ttl"`
}

// MetricsConfig exposes Prometheus metrics over HTTP when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Node: NodeConfig{
			URL:     "http://localhost:8114",
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{Burst: 1},
		Registry: RegistryConfig{
			Network:  "dev",
			Balancer: loadbalance.RoundRobin,
		},
		Server: ServerConfig{
			Listen: ":8114",
			TTL:    10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over Default. It does not validate: callers apply their
// overrides first and then call Validate. An empty path yields Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: read")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Node.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("config: node.url %q is not an http(s) URL", c.Node.URL)
	}
	if c.Node.Timeout <= 0 {
		return errors.Errorf("config: node.timeout must be positive, got %s", c.Node.Timeout)
	}
	if c.RateLimit.Rate < 0 {
		return errors.Errorf("config: rate_limit.rate must not be negative, got %g", c.RateLimit.Rate)
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst < 1 {
		return errors.Errorf("config: rate_limit.burst must be at least 1, got %d", c.RateLimit.Burst)
	}
	if _, err := loadbalance.New(c.Registry.Balancer, c.Registry.Key); err != nil {
		return errors.Wrap(err, "config: registry.balancer")
	}
	if len(c.Registry.Endpoints) > 0 && c.Registry.Network == "" {
		return errors.New("config: registry.network is required with registry.endpoints")
	}
	if c.Server.TTL <= 0 {
		return errors.Errorf("config: server.ttl must be positive, got %d", c.Server.TTL)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "config: log.level")
	}
	return nil
}

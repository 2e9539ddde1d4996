package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the daemon's complete runtime configuration, loaded by viper
// from a YAML file (with environment-variable overrides) and
// validated once at startup, the way johanix-tdns/tdnsd's ParseConfig
// does with its own Config struct.
type Config struct {
	TLS      TLSConfig      `mapstructure:"tls" validate:"required"`
	Registry RegistryConfig `mapstructure:"registry" validate:"required"`
	DoT      DoTConfig      `mapstructure:"dot" validate:"required"`
	Proxy    ProxyConfig    `mapstructure:"proxy" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type TLSConfig struct {
	CertFile string `mapstructure:"cert_file" validate:"required,file"`
	KeyFile  string `mapstructure:"key_file" validate:"required,file"`
	CAFile   string `mapstructure:"ca_file" validate:"required,file"`
}

type RegistryConfig struct {
	EndpointsFile string `mapstructure:"endpoints_file" validate:"required,file"`
	ZonesFile     string `mapstructure:"zones_file" validate:"required,file"`
	RoutesFile    string `mapstructure:"routes_file" validate:"required,file"`
}

type DoTConfig struct {
	ListenAddr      string `mapstructure:"listen_addr" validate:"required"`
	DoHUpstreamURL  string `mapstructure:"doh_upstream_url" validate:"required,url"`
	ProxyPublicIPv4 string `mapstructure:"proxy_public_ipv4" validate:"required,ip4_addr"`
}

type ProxyConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`
}

type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

const defaultConfigName = "ztdnsd"

func defaultConfig() {
	viper.SetDefault("dot.listen_addr", ":853")
	viper.SetDefault("dot.doh_upstream_url", "https://cloudflare-dns.com/dns-query")
	viper.SetDefault("proxy.listen_addr", ":8443")
	viper.SetDefault("metrics.listen_addr", "127.0.0.1:9090")
	viper.SetDefault("log.development", false)
}

// loadConfig reads the config file named by cfgFile (or searches the
// standard locations if empty), applies environment overrides, and
// validates the result. A validation failure is a fatal init error, per
// spec section 7's "nothing except a fatal initialization failure
// terminates the process."
func loadConfig(cfgFile string) (*Config, error) {
	defaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(defaultConfigName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/ztdnsd")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("ZTDNSD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &conf, nil
}

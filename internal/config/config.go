// Package config loads qcore's configuration: a small set of top-level
// flags for the fields an operator tunes per deployment, following
// original_source/qcore/src/main.rs's clap Args, plus a YAML-loaded
// structured block for the ambient observability settings, following
// nf/upf/internal/config/config.go's Config/Load/applyDefaults shape.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds qcore's full runtime configuration.
type Config struct {
	IPAddr                    net.IP `yaml:"-"`
	MCC                       string `yaml:"-"`
	MNC                       string `yaml:"-"`
	AMFRegionID               uint8  `yaml:"-"`
	AMFSetID                  uint16 `yaml:"-"`
	AMFPointer                uint8  `yaml:"-"`
	SST                       uint8  `yaml:"-"`
	TUNName                   string `yaml:"-"`
	UESubnet                  net.IP `yaml:"-"`
	SkipUEAuthenticationCheck bool   `yaml:"-"`
	SIMFile                   string `yaml:"-"`

	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds the ambient logging/metrics/tracing block,
// loaded from YAML the way nf/upf/internal/config/config.go's
// ObservabilityConfig is.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// MetricsConfig holds Prometheus server configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig holds zap logger configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PLMNBytes TBCD-encodes MCC/MNC into the 3-byte PLMN field used
// throughout F1AP/NAS, per TS 24.008 10.5.1.3: digit 3 of MNC pads with
// 0xF for a 2-digit MNC.
func (c *Config) PLMNBytes() [3]byte {
	mnc := c.MNC
	mncDigit3 := byte(0x0f)
	if len(mnc) == 3 {
		mncDigit3 = mnc[2] - '0'
		mnc = mnc[:2]
	}
	mcc := c.MCC
	return [3]byte{
		(mcc[1]-'0')<<4 | (mcc[0] - '0'),
		mncDigit3<<4 | (mcc[2] - '0'),
		(mnc[1]-'0')<<4 | (mnc[0] - '0'),
	}
}

// AMFIDs packs the AMF region id (8 bits), set id (10 bits) and pointer
// (6 bits) into the 3-byte AMF Identifier field, TS 23.003 2.10.1.
func (c *Config) AMFIDs() [3]byte {
	return [3]byte{
		c.AMFRegionID,
		byte(c.AMFSetID >> 2),
		byte(c.AMFSetID<<6) | (c.AMFPointer & 0x3f),
	}
}

// ServingNetworkName builds the SNN KDF input string, TS 23.003 28.1.
func (c *Config) ServingNetworkName() string {
	mnc := c.MNC
	if len(mnc) == 2 {
		mnc = "0" + mnc
	}
	return fmt.Sprintf("5G:mnc%s.mcc%s.3gppnetwork.org", mnc, c.MCC)
}

// Parse builds a Config from CLI flags (the operational fields) plus an
// optional YAML file (the observability block), following
// original_source/qcore/src/main.rs's flag set and
// nf/upf/internal/config/config.go's Load/applyDefaults split.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("qcore", flag.ContinueOnError)

	ip := fs.String("ip", "127.0.0.1", "local IPv4 address to bind F1-C/F1-U on")
	mcc := fs.String("mcc", "001", "PLMN MCC, 3 digits")
	mnc := fs.String("mnc", "01", "PLMN MNC, 2 or 3 digits")
	amfRegion := fs.Uint("amf-region", 1, "AMF region id")
	amfSet := fs.Uint("amf-set", 1, "AMF set id")
	amfPointer := fs.Uint("amf-pointer", 1, "AMF pointer")
	sst := fs.Uint("sst", 1, "single slice SST")
	tunName := fs.String("tun-name", "ue", "N6 TUN device name")
	ueSubnet := fs.String("ue-subnet", "10.255.0.0", "UE IPv4 subnet, last octet must be 0")
	skipAuth := fs.Bool("skip-ue-authentication-check", false, "accept any RES* from the UE (testing only)")
	simFile := fs.String("sim-file", "sims.yaml", "path to the SIM credential table")
	configFile := fs.String("config", "", "optional YAML config file for observability settings")
	metricsAddr := fs.String("metrics-addr", ":9094", "Prometheus metrics listen address")
	logLevel := fs.String("log-level", "info", "zap log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	localIP := net.ParseIP(*ip).To4()
	if localIP == nil {
		return nil, fmt.Errorf("config: invalid -ip %q", *ip)
	}
	subnet := net.ParseIP(*ueSubnet).To4()
	if subnet == nil {
		return nil, fmt.Errorf("config: invalid -ue-subnet %q", *ueSubnet)
	}

	cfg := &Config{
		IPAddr:                    localIP,
		MCC:                       *mcc,
		MNC:                       *mnc,
		AMFRegionID:               uint8(*amfRegion),
		AMFSetID:                  uint16(*amfSet),
		AMFPointer:                uint8(*amfPointer),
		SST:                       uint8(*sst),
		TUNName:                   *tunName,
		UESubnet:                  subnet,
		SkipUEAuthenticationCheck: *skipAuth,
		SIMFile:                   *simFile,
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: true, Addr: *metricsAddr},
			Logging: LoggingConfig{Level: *logLevel},
		},
	}

	if *configFile != "" {
		if err := cfg.loadObservability(*configFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) loadObservability(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	var overlay struct {
		Observability ObservabilityConfig `yaml:"observability"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	c.Observability = overlay.Observability
	return nil
}

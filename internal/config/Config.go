// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//nolint:revive // Internal package
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/open-edge-platform/orch-library/go/dazl"
	"gopkg.in/yaml.v2"
)

var log = dazl.GetPackageLogger()

// FileEnv names the environment variable pointing at the YAML configuration file
const FileEnv = "CONSOLE_TEST_CONFIG"

const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebkit   = "webkit"
)

// Configuration is the console test and probe configuration
type Configuration struct {
	// console route as seen from the browser
	ConsoleURL string `yaml:"consoleURL"`

	// namespace and service of the console, used for port forwarding
	ConsoleNamespace string `yaml:"consoleNamespace"`
	ConsoleService   string `yaml:"consoleService"`

	// namespace holding address spaces created by the tests
	InfraNamespace string `yaml:"infraNamespace"`

	// console login
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// secret in InfraNamespace holding username/password, read when Password is empty
	CredentialsSecret string `yaml:"credentialsSecret"`

	// AMQP endpoint (host:port) of the messaging infrastructure
	MessagingHost string `yaml:"messagingHost"`

	// browser engine: chromium, firefox or webkit
	Browser  string `yaml:"browser"`
	Headless bool   `yaml:"headless"`

	// default playwright timeout for locators and navigation
	DefaultTimeout time.Duration `yaml:"defaultTimeout"`

	// where screenshots of failed steps are written
	ScreenshotDir string `yaml:"screenshotDir"`

	// expected target of the console help link
	DocsURL string `yaml:"docsURL"`

	// on retry, initial delay
	InitialSleepInterval time.Duration `yaml:"initialSleepInterval"`

	// maximum wait on retry
	MaxWaitTime time.Duration `yaml:"maxWaitTime"`

	// probe round period
	ProbeInterval time.Duration `yaml:"probeInterval"`

	// number of worker threads
	NumberWorkerThreads int `yaml:"numberWorkerThreads"`

	// probe endpoints
	GRPCPort               int    `yaml:"grpcPort"`
	HealthProbeBindAddress string `yaml:"healthProbeBindAddress"`
	MetricsBindAddress     string `yaml:"metricsBindAddress"`

	// OCI registry receiving screenshot artifacts, empty disables publishing
	ArtifactRegistry   string `yaml:"artifactRegistry"`
	ArtifactRepository string `yaml:"artifactRepository"`
	PlainHTTPRegistry  bool   `yaml:"plainHTTPRegistry"`

	// skip TLS verification towards the console and the messaging endpoint
	InsecureSkipVerify bool `yaml:"insecureSkipVerify"`
}

// Default returns the configuration used when nothing is set
func Default() Configuration {
	return Configuration{
		ConsoleNamespace:       "enmasse-infra",
		ConsoleService:         "console",
		InfraNamespace:         "enmasse-infra",
		CredentialsSecret:      "console-test-credentials",
		Browser:                BrowserChromium,
		Headless:               true,
		DefaultTimeout:         30 * time.Second,
		ScreenshotDir:          "screenshots",
		InitialSleepInterval:   1 * time.Second,
		MaxWaitTime:            5 * time.Minute,
		ProbeInterval:          5 * time.Minute,
		NumberWorkerThreads:    1,
		GRPCPort:               8080,
		HealthProbeBindAddress: ":8081",
		MetricsBindAddress:     ":8082",
		ArtifactRepository:     "console-tests/screenshots",
		InsecureSkipVerify:     true,
	}
}

func DumpConfig(config Configuration) {
	log.Info("Using configuration:")

	log.Infof("   consoleURL: %s", config.ConsoleURL)
	log.Infof("   consoleNamespace: %s", config.ConsoleNamespace)
	log.Infof("   consoleService: %s", config.ConsoleService)
	log.Infof("   infraNamespace: %s", config.InfraNamespace)
	log.Infof("   username: %s", config.Username)
	log.Infof("   password: %s", mask(config.Password))
	log.Infof("   credentialsSecret: %s", config.CredentialsSecret)
	log.Infof("   messagingHost: %s", config.MessagingHost)
	log.Infof("   browser: %s", config.Browser)
	log.Infof("   headless: %t", config.Headless)
	log.Infof("   defaultTimeout: %s", config.DefaultTimeout)
	log.Infof("   screenshotDir: %s", config.ScreenshotDir)
	log.Infof("   docsURL: %s", config.DocsURL)
	log.Infof("   initialSleepInterval: %s", config.InitialSleepInterval)
	log.Infof("   maxWaitTime: %s", config.MaxWaitTime)
	log.Infof("   probeInterval: %s", config.ProbeInterval)
	log.Infof("   numberWorkerThreads: %d", config.NumberWorkerThreads)
	log.Infof("   grpcPort: %d", config.GRPCPort)
	log.Infof("   healthProbeBindAddress: %s", config.HealthProbeBindAddress)
	log.Infof("   metricsBindAddress: %s", config.MetricsBindAddress)
	log.Infof("   artifactRegistry: %s", config.ArtifactRegistry)
	log.Infof("   artifactRepository: %s", config.ArtifactRepository)
	log.Infof("   plainHTTPRegistry: %t", config.PlainHTTPRegistry)
	log.Infof("   insecureSkipVerify: %t", config.InsecureSkipVerify)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// LoadFile overlays the YAML document at path onto config. Keys missing from the file keep their value.
func LoadFile(path string, config *Configuration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("decoding config file %s: %w", path, err)
	}
	if err := validateIntervals(*config); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// validateIntervals rejects intervals the probe manager cannot tick or sleep on
func validateIntervals(config Configuration) error {
	for _, interval := range []struct {
		name  string
		value time.Duration
	}{
		{"initial sleep interval", config.InitialSleepInterval},
		{"max wait time", config.MaxWaitTime},
		{"probe interval", config.ProbeInterval},
	} {
		if interval.value <= 0 {
			log.Errorf("Invalid %s %s", interval.name, interval.value)
			return fmt.Errorf("invalid %s %s must be positive", interval.name, interval.value)
		}
	}
	return nil
}

// InitConfig builds the configuration from defaults, the optional CONSOLE_TEST_CONFIG file and the environment
func InitConfig() (Configuration, error) {
	config := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := LoadFile(path, &config); err != nil {
			log.Errorf("Invalid config file %s", path)
			return config, err
		}
	}

	setString(&config.ConsoleURL, "CONSOLE_URL")
	setString(&config.ConsoleNamespace, "CONSOLE_NAMESPACE")
	setString(&config.ConsoleService, "CONSOLE_SERVICE")
	setString(&config.InfraNamespace, "INFRA_NAMESPACE")
	setString(&config.Username, "CONSOLE_USERNAME")
	setString(&config.Password, "CONSOLE_PASSWORD")
	setString(&config.CredentialsSecret, "CREDENTIALS_SECRET")
	setString(&config.MessagingHost, "MESSAGING_HOST")
	setString(&config.Browser, "BROWSER")
	setString(&config.ScreenshotDir, "SCREENSHOT_DIR")
	setString(&config.DocsURL, "DOCS_URL")
	setString(&config.HealthProbeBindAddress, "HEALTH_PROBE_BIND_ADDRESS")
	setString(&config.MetricsBindAddress, "METRICS_BIND_ADDRESS")
	setString(&config.ArtifactRegistry, "ARTIFACT_REGISTRY")
	setString(&config.ArtifactRepository, "ARTIFACT_REPOSITORY")

	var err error
	if err = setBool(&config.Headless, "HEADLESS"); err != nil {
		return config, err
	}
	if err = setBool(&config.PlainHTTPRegistry, "PLAIN_HTTP_REGISTRY"); err != nil {
		return config, err
	}
	if err = setBool(&config.InsecureSkipVerify, "INSECURE_SKIP_VERIFY"); err != nil {
		return config, err
	}

	// intervals are whole seconds
	if err = setSeconds(&config.DefaultTimeout, "DEFAULT_TIMEOUT"); err != nil {
		return config, err
	}
	if err = setSeconds(&config.InitialSleepInterval, "INITIAL_SLEEP_INTERVAL"); err != nil {
		return config, err
	}
	if err = setSeconds(&config.MaxWaitTime, "MAX_WAIT_TIME"); err != nil {
		return config, err
	}
	if err = setSeconds(&config.ProbeInterval, "PROBE_INTERVAL"); err != nil {
		return config, err
	}
	if err = setInt(&config.NumberWorkerThreads, "NUMBER_WORKER_THREADS"); err != nil {
		return config, err
	}
	if err = setInt(&config.GRPCPort, "GRPC_PORT"); err != nil {
		return config, err
	}

	config.Browser = strings.ToLower(config.Browser)
	switch config.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebkit:
	default:
		log.Errorf("Invalid browser %s", config.Browser)
		return config, fmt.Errorf("invalid browser %q must be one of %s, %s, %s", config.Browser, BrowserChromium, BrowserFirefox, BrowserWebkit)
	}

	if config.NumberWorkerThreads < 1 {
		log.Errorf("Invalid number of worker threads %d", config.NumberWorkerThreads)
		return config, fmt.Errorf("invalid number of worker threads %d must be at least 1", config.NumberWorkerThreads)
	}

	if err = validateIntervals(config); err != nil {
		return config, err
	}

	if config.InitialSleepInterval > config.MaxWaitTime {
		log.Errorf("Sleep interval %s must be less than max wait time %s", config.InitialSleepInterval, config.MaxWaitTime)
		return config, fmt.Errorf("invalid sleep interval %s must be less than max wait time %s", config.InitialSleepInterval, config.MaxWaitTime)
	}
	return config, nil
}

func setString(field *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*field = value
	}
}

func setBool(field *bool, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Errorf("Invalid boolean %s for %s", value, key)
		return err
	}
	*field = b
	return nil
}

func setInt(field *int, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Errorf("Invalid number %s for %s", value, key)
		return err
	}
	*field = i
	return nil
}

func setSeconds(field *time.Duration, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Errorf("Invalid number of seconds %s for %s", value, key)
		return err
	}
	*field = time.Duration(i) * time.Second
	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
	"github.com/fivetwenty-io/horizon-client/pkg/horizonclient"
)

const (
	configDirName  = ".horizon"
	configFileName = "config.yml"
)

// Config represents the CLI configuration.
type Config struct {
	URL               string        `json:"url,omitempty"                 yaml:"url,omitempty"`
	Output            string        `json:"output,omitempty"              yaml:"output,omitempty"`
	ClientName        string        `json:"client_name,omitempty"         yaml:"client_name,omitempty"`
	RequestsPerSecond float64       `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	Retries           int           `json:"retries,omitempty"             yaml:"retries,omitempty"`
	Timeout           time.Duration `json:"timeout,omitempty"             yaml:"timeout,omitempty"`
	NATSURL           string        `json:"nats_url,omitempty"            yaml:"nats_url,omitempty"`
	SubjectPrefix     string        `json:"subject_prefix,omitempty"      yaml:"subject_prefix,omitempty"`
}

// configKeys maps the keys accepted by "config set" to their setters.
var configKeys = map[string]func(config *Config, value string) error{
	"url": func(config *Config, value string) error {
		config.URL = horizonclient.NormalizeURL(value)

		return nil
	},
	"output": func(config *Config, value string) error {
		err := validateOutputFormat(value)
		if err != nil {
			return err
		}

		config.Output = value

		return nil
	},
	"client_name": func(config *Config, value string) error {
		config.ClientName = value

		return nil
	},
	"requests_per_second": func(config *Config, value string) error {
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parsing requests_per_second: %w", err)
		}

		config.RequestsPerSecond = rps

		return nil
	},
	"retries": func(config *Config, value string) error {
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parsing retries: %w", err)
		}

		config.Retries = retries

		return nil
	},
	"timeout": func(config *Config, value string) error {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}

		config.Timeout = timeout

		return nil
	},
	"nats_url": func(config *Config, value string) error {
		config.NATSURL = value

		return nil
	},
	"subject_prefix": func(config *Config, value string) error {
		config.SubjectPrefix = value

		return nil
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Horizon CLI configuration stored in ~/.horizon/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration from file, environment and flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := &OutputRenderer[*Config]{RenderTable: displayConfigTable}

			return renderer.Render(cmd.OutOrStdout(), loadConfig(), outputFormat())
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + supportedConfigKeys(),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value. Keys: " + supportedConfigKeys(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleared all configuration")

			return nil
		},
	}
}

func supportedConfigKeys() string {
	keys := make([]string, 0, len(configKeys))
	for key := range configKeys {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return fmt.Sprint(keys)
}

func setConfigValue(config *Config, key, value string) error {
	setter, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return setter(config, value)
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "url":
		config.URL = ""
	case "output":
		config.Output = ""
	case "client_name":
		config.ClientName = ""
	case "requests_per_second":
		config.RequestsPerSecond = 0
	case "retries":
		config.Retries = 0
	case "timeout":
		config.Timeout = 0
	case "nats_url":
		config.NATSURL = ""
	case "subject_prefix":
		config.SubjectPrefix = ""
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

func displayConfigTable(w io.Writer, config *Config) error {
	table := newTable(w, "Property", "Value")

	_ = table.Append("URL", orNotAvailable(config.URL))
	_ = table.Append("Output", orNotAvailable(config.Output))
	_ = table.Append("Client Name", orNotAvailable(config.ClientName))
	_ = table.Append("Requests/Second", strconv.FormatFloat(config.RequestsPerSecond, 'f', -1, 64))
	_ = table.Append("Retries", strconv.Itoa(config.Retries))
	_ = table.Append("Timeout", config.Timeout.String())
	_ = table.Append("NATS URL", orNotAvailable(config.NATSURL))
	_ = table.Append("Subject Prefix", orNotAvailable(config.SubjectPrefix))

	return renderTable(table)
}

func loadConfig() *Config {
	return &Config{
		URL:               viper.GetString("url"),
		Output:            viper.GetString("output"),
		ClientName:        viper.GetString("client_name"),
		RequestsPerSecond: viper.GetFloat64("requests_per_second"),
		Retries:           viper.GetInt("retries"),
		Timeout:           viper.GetDuration("timeout"),
		NATSURL:           viper.GetString("nats_url"),
		SubjectPrefix:     viper.GetString("subject_prefix"),
	}
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName, configFileName), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// buildHorizonConfig maps CLI configuration onto the client configuration.
func buildHorizonConfig(config *Config, logger horizon.Logger) *horizon.Config {
	horizonConfig := &horizon.Config{
		HorizonURL:        config.URL,
		ClientName:        config.ClientName,
		RequestsPerSecond: config.RequestsPerSecond,
		RetryMax:          config.Retries,
		HTTPTimeout:       config.Timeout,
	}

	if logger != nil {
		horizonConfig.Logger = logger
		horizonConfig.Debug = true
	}

	return horizonConfig
}

// CreateClient creates a Horizon client from flags, environment and the
// config file.
func CreateClient(ctx context.Context) (horizon.Client, error) {
	config := loadConfig()
	if config.URL == "" {
		return nil, fmt.Errorf("%w, use --url or 'horizon config set url URL'", ErrNoHorizonURL)
	}

	var logger horizon.Logger
	if viper.GetBool("verbose") {
		logger = newStderrLogger(os.Stderr)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := horizonclient.New(ctx, buildHorizonConfig(config, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads the configuration from a YAML file and the environment.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Default config file search paths.
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ec2ctl")
		v.AddConfigPath("/etc/ec2ctl")
	}

	// Environment variables override file values.
	v.SetEnvPrefix("EC2CTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file falls back to defaults plus environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandEnvVars(&config)

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debug", false)

	v.SetDefault("aws.region", "us-west-2")
}

// expandEnvVars expands ${VAR} references in secret-bearing fields.
func expandEnvVars(config *Config) {
	config.AWS.AccessKeyID = os.ExpandEnv(config.AWS.AccessKeyID)
	config.AWS.SecretAccessKey = os.ExpandEnv(config.AWS.SecretAccessKey)
}

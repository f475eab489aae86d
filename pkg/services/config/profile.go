package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Profile is the orchestrator configuration loaded from the profile
// file handed to every stage command.
type Profile struct {
	Bucket            string   `mapstructure:"bucket" validate:"required"`
	Region            string   `mapstructure:"region"`
	Regions           []string `mapstructure:"regions"`
	RoleName          string   `mapstructure:"role_name"`
	TopicARN          string   `mapstructure:"topic_arn"`
	CatalogueKey      string   `mapstructure:"catalogue_key"`
	BatchSize         int      `mapstructure:"batch_size"`
	IncludeCollectors []string `mapstructure:"include_collectors"`
	ExcludeCollectors []string `mapstructure:"exclude_collectors"`
	Categories        []string `mapstructure:"categories"`
	MaxRetries        int      `mapstructure:"max_retries"`
}

// LoadProfile loads configuration from the specified profile path
func LoadProfile(profilePath string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)
	v.SetDefault("region", "us-east-1")
	v.SetDefault("batch_size", 20)
	v.SetDefault("role_name", "CostPilotReadOnly")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var profile Profile
	if err := v.Unmarshal(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if profile.Bucket == "" {
		return nil, fmt.Errorf("profile is missing the state bucket")
	}
	return &profile, nil
}

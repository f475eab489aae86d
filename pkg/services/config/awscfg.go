package config

import (
	"context"

	"gopkg.in/ini.v1"
)

// Registry lists the credential profiles available to the CLI from the
// AWS shared credentials file.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
}

type awsCfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &awsCfgRegistry{cfg: cfg}, nil
}

func (cr *awsCfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

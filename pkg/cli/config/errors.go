package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrMissingRequired = goerr.New("required option is missing")
	ErrEmptyCatalog    = goerr.New("topic catalog has no topics")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	OptionKey     = "option"
	BackendKey    = "backend"
)

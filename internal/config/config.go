// Package config loads EnvVault's project-level settings from
// .envvault.yaml, layered with ENVVAULT_*-prefixed environment variable
// overrides, and resolves vault file paths from them.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

const (
	configFileName = ".envvault"
	configFileType = "yaml"
	envPrefix      = "ENVVAULT"
)

// Settings is EnvVault's project-level configuration. Every field has a
// sensible default, so the tool works with no config file present.
type Settings struct {
	DefaultEnvironment string `mapstructure:"default_environment"`
	VaultDir           string `mapstructure:"vault_dir"`
	Argon2MemoryKiB    uint32 `mapstructure:"argon2_memory_kib"`
	Argon2Iterations   uint32 `mapstructure:"argon2_iterations"`
	Argon2Parallelism  uint32 `mapstructure:"argon2_parallelism"`
}

// defaultSettings mirrors the zero-config defaults: environment "dev",
// vault directory ".envvault", and Argon2id at 64 MiB / 3 iterations /
// 4-way parallelism.
func defaultSettings() Settings {
	return Settings{
		DefaultEnvironment: "dev",
		VaultDir:           ".envvault",
		Argon2MemoryKiB:    cryptoprim.DefaultArgon2MemoryKiB,
		Argon2Iterations:   cryptoprim.DefaultArgon2Time,
		Argon2Parallelism:  cryptoprim.DefaultArgon2Threads,
	}
}

// Load reads <projectDir>/.envvault.yaml if present, falling back to
// defaults for any field it omits, then applies ENVVAULT_*-prefixed
// environment variable overrides (e.g. ENVVAULT_DEFAULT_ENVIRONMENT).
// A missing config file is not an error; a present-but-malformed one is.
func Load(projectDir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(projectDir)

	defaults := defaultSettings()
	v.SetDefault("default_environment", defaults.DefaultEnvironment)
	v.SetDefault("vault_dir", defaults.VaultDir)
	v.SetDefault("argon2_memory_kib", defaults.Argon2MemoryKiB)
	v.SetDefault("argon2_iterations", defaults.Argon2Iterations)
	v.SetDefault("argon2_parallelism", defaults.Argon2Parallelism)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: reading %s.%s in %s: %w", configFileName, configFileType, projectDir, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("config: decoding settings: %w", err)
	}
	return &settings, nil
}

// VaultPath builds the full path to a vault file for the given
// environment, e.g. <projectDir>/.envvault/dev.vault.
func (s *Settings) VaultPath(projectDir, environment string) string {
	return filepath.Join(projectDir, s.VaultDir, environment+".vault")
}

// Argon2Params converts the stored settings into cryptoprim's KDF
// parameter type.
func (s *Settings) Argon2Params() cryptoprim.Argon2Params {
	return cryptoprim.Argon2Params{
		MemoryKiB:   s.Argon2MemoryKiB,
		Time:        s.Argon2Iterations,
		Parallelism: uint8(s.Argon2Parallelism),
	}
}

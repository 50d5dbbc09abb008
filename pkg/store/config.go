package store

import (
	"log"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config carries the settings the store and calendar manager read at startup.
type Config interface {
	BasePath() string
	User() string
	KeyHex() string
}

// LoadConfig reads `.agenda` config (yaml implicit) plus AGENDA_* env vars.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.agenda.db")
	viper.SetConfigName(".agenda")
	viper.SetEnvPrefix("AGENDA")
	viper.AutomaticEnv()

	if override := os.Getenv("AGENDA_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	viper.AddConfigPath("$HOME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("error reading config file: %v", err)
			return nil, err
		}
	}

	return &fileConfig{
		Path: viper.GetString("path"),
		UID:  viper.GetString("user"),
		Key:  viper.GetString("key"),
	}, nil
}

type fileConfig struct {
	Path string `json:"path"`
	UID  string `json:"user"`
	Key  string `json:"key"`
}

func (f *fileConfig) BasePath() string {
	expanded, err := homedir.Expand(f.Path)
	if err != nil {
		return f.Path
	}
	return expanded
}

func (f *fileConfig) User() string { return f.UID }

// KeyHex is the hex-encoded symmetric key records are sealed with. Empty
// means the store runs unencrypted.
func (f *fileConfig) KeyHex() string { return f.Key }

package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/rs/zerolog/log"
)

// Load reads the json config at the given path into v.
func Load(path string, v interface{}) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not load config from %s: %w", path, err)
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("could not unmarshal the config from %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("loaded config")

	return nil
}

// MustLoad loads the config at the given path, panicking on failure.
func MustLoad(path string, v interface{}) {
	if err := Load(path, v); err != nil {
		panic(err.Error())
	}
}

package main

import (
	"encoding/json"
	"errors"
	"log"
	"os"
)

// Config is persisted between runs so a session survives restarts.
type Config struct {
	Host  string `json:"host"`
	Token string `json:"token,omitempty"`

	path string
}

func readConfig(path string) (*Config, error) {
	config := &Config{Host: "http://localhost:8080", path: path}

	fp, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Println("no config file found; using defaults")
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fp.Close(); err != nil {
			log.Println("unable to close config file")
		}
	}()

	if err := json.NewDecoder(fp).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) save() error {
	fp, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if err := fp.Close(); err != nil {
			log.Println("unable to close config file")
		}
	}()

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

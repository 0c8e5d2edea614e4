package util

import (
	_ "embed"
	"fmt"
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"strconv"
)

const Name = "driftwood"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host            string
		HttpPort        int    `yaml:"httpPort"`
		SiteURL         string `yaml:"siteUrl"`
		NodeName        string `yaml:"nodeName"`
		PushTimeoutSecs int    `yaml:"pushTimeoutSecs"`
		PublishWorkers  int    `yaml:"publishWorkers"`
	}
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	var buf []byte
	var err error

	// Try to read from resolved path
	buf, err = os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		// Try to write default config to user config directory
		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envHost := os.Getenv("DRIFTWOOD_HOST")
	envHttpPort := os.Getenv("DRIFTWOOD_HTTPPORT")
	envSiteURL := os.Getenv("DRIFTWOOD_SITEURL")
	envNodeName := os.Getenv("DRIFTWOOD_NODENAME")
	envPushTimeout := os.Getenv("DRIFTWOOD_PUSHTIMEOUT")
	envWorkers := os.Getenv("DRIFTWOOD_WORKERS")

	if envHost != "" {
		c.Conf.Host = envHost
	}

	if envHttpPort != "" {
		v, err := strconv.Atoi(envHttpPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpPort = v
	}

	if envSiteURL != "" {
		c.Conf.SiteURL = envSiteURL
	}

	if envNodeName != "" {
		c.Conf.NodeName = envNodeName
	}

	if envPushTimeout != "" {
		v, err := strconv.Atoi(envPushTimeout)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.PushTimeoutSecs = v
	}

	if envWorkers != "" {
		v, err := strconv.Atoi(envWorkers)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.PublishWorkers = v
	}

	if c.Conf.PushTimeoutSecs <= 0 {
		c.Conf.PushTimeoutSecs = 10
	}

	if c.Conf.PublishWorkers <= 0 {
		c.Conf.PublishWorkers = 4
	}

	// SiteURL prefixes every local canonical URL, keep it slash-free
	c.Conf.SiteURL = NormalizeURL(c.Conf.SiteURL)

	return c, nil
}

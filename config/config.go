// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads service configuration from an optional YAML file
// with MEDEQUIP_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the service.
type Config struct {
	ListenPort          string
	DatabasePath        string
	WeaviateURL         string
	EmbeddingServiceURL string
	RetrievalTopK       int
	HistoryMaxTurns     int
	StructuredTimeout   time.Duration
	RetrievalTimeout    time.Duration
	OTLPEndpoint        string
	SeedSampleData      bool
}

// fileConfig is the YAML shape. Durations are strings ("5s", "1m30s")
// since yaml.v3 has no native time.Duration decoding; pointers distinguish
// "absent" from zero values so the file only overrides what it sets.
type fileConfig struct {
	ListenPort          *string `yaml:"listen_port"`
	DatabasePath        *string `yaml:"database_path"`
	WeaviateURL         *string `yaml:"weaviate_url"`
	EmbeddingServiceURL *string `yaml:"embedding_service_url"`
	RetrievalTopK       *int    `yaml:"retrieval_top_k"`
	HistoryMaxTurns     *int    `yaml:"history_max_turns"`
	StructuredTimeout   *string `yaml:"structured_timeout"`
	RetrievalTimeout    *string `yaml:"retrieval_timeout"`
	OTLPEndpoint        *string `yaml:"otlp_endpoint"`
	SeedSampleData      *bool   `yaml:"seed_sample_data"`
}

func (c *Config) unmarshalYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.ListenPort != nil {
		c.ListenPort = *fc.ListenPort
	}
	if fc.DatabasePath != nil {
		c.DatabasePath = *fc.DatabasePath
	}
	if fc.WeaviateURL != nil {
		c.WeaviateURL = *fc.WeaviateURL
	}
	if fc.EmbeddingServiceURL != nil {
		c.EmbeddingServiceURL = *fc.EmbeddingServiceURL
	}
	if fc.RetrievalTopK != nil {
		c.RetrievalTopK = *fc.RetrievalTopK
	}
	if fc.HistoryMaxTurns != nil {
		c.HistoryMaxTurns = *fc.HistoryMaxTurns
	}
	if fc.OTLPEndpoint != nil {
		c.OTLPEndpoint = *fc.OTLPEndpoint
	}
	if fc.SeedSampleData != nil {
		c.SeedSampleData = *fc.SeedSampleData
	}
	if fc.StructuredTimeout != nil {
		d, err := time.ParseDuration(*fc.StructuredTimeout)
		if err != nil {
			return fmt.Errorf("structured_timeout: %w", err)
		}
		c.StructuredTimeout = d
	}
	if fc.RetrievalTimeout != nil {
		d, err := time.ParseDuration(*fc.RetrievalTimeout)
		if err != nil {
			return fmt.Errorf("retrieval_timeout: %w", err)
		}
		c.RetrievalTimeout = d
	}
	return nil
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		ListenPort:        "8080",
		DatabasePath:      "medequip.db",
		RetrievalTopK:     3,
		HistoryMaxTurns:   20,
		StructuredTimeout: 5 * time.Second,
		RetrievalTimeout:  10 * time.Second,
		SeedSampleData:    true,
	}
}

// Load reads the YAML file at path (skipped when path is empty or absent)
// and applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; defaults plus env apply.
		case err != nil:
			return cfg, fmt.Errorf("read config file: %w", err)
		default:
			if err := cfg.unmarshalYAML(data); err != nil {
				return cfg, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenPort, "MEDEQUIP_LISTEN_PORT")
	setString(&cfg.DatabasePath, "MEDEQUIP_DATABASE_PATH")
	setString(&cfg.WeaviateURL, "MEDEQUIP_WEAVIATE_URL")
	setString(&cfg.EmbeddingServiceURL, "EMBEDDING_SERVICE_URL")
	setString(&cfg.OTLPEndpoint, "MEDEQUIP_OTLP_ENDPOINT")
	setInt(&cfg.RetrievalTopK, "MEDEQUIP_RETRIEVAL_TOP_K")
	setInt(&cfg.HistoryMaxTurns, "MEDEQUIP_HISTORY_MAX_TURNS")
	setDuration(&cfg.StructuredTimeout, "MEDEQUIP_STRUCTURED_TIMEOUT")
	setDuration(&cfg.RetrievalTimeout, "MEDEQUIP_RETRIEVAL_TIMEOUT")
	setBool(&cfg.SeedSampleData, "MEDEQUIP_SEED_SAMPLE_DATA")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

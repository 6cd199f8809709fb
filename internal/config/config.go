// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

const (
	SessionStoreMemory   = "memory"
	SessionStoreFS       = "fs"
	SessionStoreValKey   = "valkey"
	SessionStorePostgres = "postgres"

	ClientAuthInsecure = "insecure"
	ClientAuthMTLS     = "mtls"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	API          API          `yaml:"api"`
	SessionStore SessionStore `yaml:"sessionStore"`
	KeepAlive    KeepAlive    `yaml:"keepAlive"`

	Database Database `yaml:"database"`
	ValKey   ValKey   `yaml:"valkey"`
	Migrate  Migrate  `yaml:"migrate"`
}

type API struct {
	BaseURL     string        `yaml:"baseURL" default:"http://localhost:8000/api"`
	RefreshPath string        `yaml:"refreshPath" default:"/token/refresh/"`
	Timeout     time.Duration `yaml:"timeout" default:"30s"`
	UserAgent   string        `yaml:"userAgent" default:"hrms-client"`
	// RefreshLeeway refreshes JWT access tokens that expire within the
	// leeway before sending. Zero only refreshes after a 401.
	RefreshLeeway time.Duration `yaml:"refreshLeeway" default:"0s"`
	ClientAuth    ClientAuth    `yaml:"clientAuth"`
}

type ClientAuth struct {
	Type string          `yaml:"type" default:"insecure"`
	MTLS *commoncfg.MTLS `yaml:"mtls"`
}

type SessionStore struct {
	Type string `yaml:"type" default:"fs"`
	// Path of the session file of the fs store. Defaults to
	// $HOME/.hrms-client/session.json.
	Path string `yaml:"path"`
	// Namespace separates sessions sharing a valkey or postgres store.
	Namespace string `yaml:"namespace" default:"default"`
}

type KeepAlive struct {
	Interval time.Duration `yaml:"interval" default:"4m"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	SSLMode  string              `yaml:"sslMode" default:"prefer"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
}

type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
	Prefix    string              `yaml:"prefix" default:"hrms-client"`
}

type Migrate struct {
	// TargetVersion stops the migration at the given version. Zero applies
	// all migrations.
	TargetVersion int64 `yaml:"targetVersion"`
}

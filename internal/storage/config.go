package storage

import (
	"strings"

	"github.com/Manushivuz/IISPPR-MainSite/internal/config"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	PublicURL  string
	PublicRead bool
}

// NewMinIOConfig derives the MinIO settings from the service config.
func NewMinIOConfig(c config.StorageConfig) *MinIOConfig {
	return &MinIOConfig{
		Endpoint:   c.Endpoint,
		AccessKey:  c.AccessKey,
		SecretKey:  c.SecretKey,
		UseSSL:     c.UseSSL,
		Bucket:     getOr(c.Bucket, "mainsite"),
		PublicURL:  strings.TrimRight(c.PublicURL, "/"),
		PublicRead: c.PublicRead,
	}
}

// Configured reports whether a remote asset host was set up.
func (c *MinIOConfig) Configured() bool {
	return c != nil && c.Endpoint != ""
}

// baseURL is the prefix of every durable object URL.
func (c *MinIOConfig) baseURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.Endpoint + "/" + c.Bucket
}

func getOr(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

package api

import (
	"github.com/billmal071/pavilion/internal/config"
)

// NewClient creates a backend client from the application config
func NewClient() *HTTPClient {
	cfg := config.Get()

	c := NewHTTPClient(cfg.API.BaseURL, cfg.Network.Timeout)
	c.userAgent = cfg.Network.UserAgent
	c.retry = DefaultRetryConfig()
	return c
}

// Package http builds the HTTP clients used to reach the analyses listing
// service: proxy handling, HTTP/2 transport tuning and retry policy.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/rescale/rescale-analyses/internal/config"
	"github.com/rescale/rescale-analyses/internal/logging"
)

// Retry wait bounds used by NewRetryClient.
const (
	RetryWaitMin = 500 * time.Millisecond
	RetryWaitMax = 10 * time.Second
)

// retryLogger adapts the zerolog wrapper to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger *logging.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

var _ retryablehttp.LeveledLogger = retryLogger{}

// NewRetryClient returns a retrying client for the listing service.
//
// The transport comes from ConfigureHTTPClient. When no proxy is in play the
// transport is upgraded to HTTP/2; proxies are left on HTTP/1.1 because many
// of them mishandle multiplexed streams. DISABLE_HTTP2=true forces HTTP/1.1.
func NewRetryClient(cfg *config.Config, logger *logging.Logger) (*retryablehttp.Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Component("http")

	httpClient, err := ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	if tr, ok := httpClient.Transport.(*nethttp.Transport); ok {
		if ProxyActive(cfg) || os.Getenv("DISABLE_HTTP2") == "true" {
			tr.ForceAttemptHTTP2 = false
			tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
		} else if err := http2.ConfigureTransport(tr); err != nil {
			logger.Debug().Err(err).Msg("HTTP/2 not configured")
		}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = RetryWaitMin
	retryClient.RetryWaitMax = RetryWaitMax
	retryClient.CheckRetry = CheckRetry
	retryClient.Logger = retryLogger{logger: logger}
	// Return the last response instead of a generic "giving up" error so
	// callers can report the service's status and body.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return retryClient, nil
}

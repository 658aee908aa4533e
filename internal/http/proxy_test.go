package http

import (
	"net/http"
	"net/url"
	"testing"

	ntlmssp "github.com/Azure/go-ntlmssp"

	"github.com/rescale/rescale-analyses/internal/config"
	"github.com/rescale/rescale-analyses/internal/logging"
)

func TestProxyFuncWithBypass(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")

	tests := []struct {
		name       string
		noProxy    string
		url        string
		wantBypass bool
	}{
		{"empty bypass list proxies everything", "", "https://api.example.com/data", false},
		{"wildcard match", "*.example.com", "https://api.example.com/data", true},
		{"exact domain matches subdomain", "example.com", "https://api.example.com/data", true},
		{"cidr match", "10.0.0.0/8", "http://10.1.2.3:8080/api", true},
		{"non-match", "*.internal.corp,10.0.0.0/8", "https://analyses.example.org/api", false},
		{"multiple patterns", "*.example.com, 192.168.0.0/16, internal.corp", "https://internal.corp/status", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxyFunc := proxyFuncWithBypass(proxyURL, tt.noProxy, logging.NewNopLogger())

			req, _ := http.NewRequest("GET", tt.url, nil)
			result, err := proxyFunc(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantBypass && result != nil {
				t.Errorf("expected bypass (nil) for %s, got %v", tt.url, result)
			}
			if !tt.wantBypass {
				if result == nil {
					t.Fatalf("expected proxy for %s, got nil (bypass)", tt.url)
				}
				if result.Host != "proxy.corp:8080" {
					t.Errorf("proxy host = %s, want proxy.corp:8080", result.Host)
				}
			}
		})
	}
}

func TestBuildProxyURL(t *testing.T) {
	u := buildProxyURL(&config.Config{ProxyHost: "proxy.corp", ProxyUser: "alice"})
	if u.Host != "proxy.corp:8080" {
		t.Errorf("Host = %s, want default port 8080", u.Host)
	}
	if u.User != nil {
		t.Error("credentials must not be embedded without a password")
	}

	u = buildProxyURL(&config.Config{ProxyHost: "proxy.corp", ProxyPort: 3128, ProxyUser: "alice", ProxyPassword: "pw"})
	if u.Host != "proxy.corp:3128" || u.User.Username() != "alice" {
		t.Errorf("proxy URL = %s", u.Redacted())
	}
}

func TestConfigureHTTPClient(t *testing.T) {
	logger := logging.NewNopLogger()

	tests := []struct {
		name     string
		cfg      config.Config
		wantErr  bool
		wantNTLM bool
	}{
		{"no proxy", config.Config{ProxyMode: "no-proxy"}, false, false},
		{"system", config.Config{ProxyMode: "system"}, false, false},
		{"basic", config.Config{ProxyMode: "basic", ProxyHost: "proxy.corp"}, false, false},
		{"ntlm wraps transport", config.Config{ProxyMode: "ntlm", ProxyHost: "proxy.corp"}, false, true},
		{"ntlm without host falls back", config.Config{ProxyMode: "ntlm"}, false, false},
		{"unknown mode", config.Config{ProxyMode: "socks"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := ConfigureHTTPClient(&tt.cfg, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ConfigureHTTPClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			_, isNTLM := client.Transport.(ntlmssp.Negotiator)
			if isNTLM != tt.wantNTLM {
				t.Errorf("NTLM transport = %v, want %v", isNTLM, tt.wantNTLM)
			}
		})
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	if !NeedsProxyPassword(&config.Config{ProxyMode: "ntlm", ProxyUser: "alice"}) {
		t.Error("ntlm with user and no password should need a password")
	}
	if NeedsProxyPassword(&config.Config{ProxyMode: "system", ProxyUser: "alice"}) {
		t.Error("system mode never needs a password")
	}
	if NeedsProxyPassword(&config.Config{ProxyMode: "basic", ProxyUser: "alice", ProxyPassword: "pw"}) {
		t.Error("password already provided")
	}
}

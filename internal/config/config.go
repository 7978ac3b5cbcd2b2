package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 전체 서비스 설정을 모은다.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Page    PageConfig
	Log     LogConfig
}

// Load 환경 변수에서 설정을 읽는다.
func Load() (*Config, error) {
	var raw struct {
		Server  rawServerConfig
		Backend BackendConfig
		Page    PageConfig
		Log     LogConfig
	}
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	server, err := loadServerConfig(raw.Server)
	if err != nil {
		return nil, err
	}

	if err := raw.Backend.validate(); err != nil {
		return nil, err
	}
	if err := raw.Page.validate(); err != nil {
		return nil, err
	}

	return &Config{Server: server, Backend: raw.Backend, Page: raw.Page, Log: raw.Log}, nil
}

type rawServerConfig struct {
	Port           string   `env:"PORT" envDefault:"3000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// ServerConfig HTTP 서버 설정.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 리슨 주소를 해석한다.
func loadServerConfig(raw rawServerConfig) (ServerConfig, error) {
	origins := make([]string, 0, len(raw.AllowedOrigins))
	for _, origin := range raw.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	port := strings.TrimSpace(raw.Port)
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	if strings.Contains(port, ":") {
		// ":3000" 또는 "127.0.0.1:3000" 형태를 그대로 허용한다.
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// BackendConfig 외부 챗봇 백엔드 설정.
type BackendConfig struct {
	URL     string        `env:"CHAT_BACKEND_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"CHAT_BACKEND_TIMEOUT" envDefault:"30s"`
}

// ChatURL returns the absolute URL of the backend chat endpoint.
func (c BackendConfig) ChatURL() string {
	return strings.TrimRight(c.URL, "/") + "/chat"
}

func (c BackendConfig) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid CHAT_BACKEND_URL value %q", c.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid CHAT_BACKEND_URL scheme %q", u.Scheme)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid CHAT_BACKEND_TIMEOUT value %s", c.Timeout)
	}
	return nil
}

// PageConfig 채팅 페이지 수명 관련 설정.
type PageConfig struct {
	DetectionDelay time.Duration `env:"CHAT_DETECTION_DELAY" envDefault:"500ms"`
	IdleTTL        time.Duration `env:"CHAT_PAGE_IDLE_TTL" envDefault:"30m"`
	SweepInterval  time.Duration `env:"CHAT_PAGE_SWEEP_INTERVAL" envDefault:"1m"`
}

func (c PageConfig) validate() error {
	if c.DetectionDelay < 0 {
		return fmt.Errorf("invalid CHAT_DETECTION_DELAY value %s", c.DetectionDelay)
	}
	if c.IdleTTL <= 0 {
		return fmt.Errorf("invalid CHAT_PAGE_IDLE_TTL value %s", c.IdleTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("invalid CHAT_PAGE_SWEEP_INTERVAL value %s", c.SweepInterval)
	}
	return nil
}

// LogConfig 로깅 설정.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
	File   string `env:"LOG_FILE"`
}

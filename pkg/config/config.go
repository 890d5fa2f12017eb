package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	LLM struct {
		Provider    string        `yaml:"provider"` // gemini or openai
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
		RPM         int           `yaml:"rpm"`
		QPS         int           `yaml:"qps"`
		MaxRetries  int           `yaml:"max_retries"`
	} `yaml:"llm"`
	Tavily struct {
		APIKey     string        `yaml:"api_key"`
		MaxResults int           `yaml:"max_results"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"tavily"`
	Finnhub struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		StreamEnabled  bool          `yaml:"stream_enabled"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"finnhub"`
	AlphaVantage struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"alpha_vantage"`
	MarketData struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"market_data"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Cache struct {
		QuoteTTL      time.Duration `yaml:"quote_ttl"`
		CandlesTTL    time.Duration `yaml:"candles_ttl"`
		FinancialsTTL time.Duration `yaml:"financials_ttl"`
		NewsTTL       time.Duration `yaml:"news_ttl"`
	} `yaml:"cache"`
	Session struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"session"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		AnalysesTopic string   `yaml:"analyses_topic"`
		RequestsTopic string   `yaml:"requests_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts int           `yaml:"max_attempts"`
			BatchSize   int           `yaml:"batch_size"`
			Linger      time.Duration `yaml:"linger"`
			Async       bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// load reads and parses a YAML configuration file without validating it,
// so env overrides can fill required fields the file omits.
func load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

// Load reads, parses, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables,
// and validates the result. Validation runs only after the overrides so
// secrets may come from the environment instead of the file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides config fields with well-known environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	switch c.LLM.Provider {
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
	default:
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Tavily.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Finnhub.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port := splitHostPort(v, 6379)
		c.Redis.Host = host
		c.Redis.Port = port
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("ANALYSES_DB_NAME"); v != "" {
		c.ClickHouse.Database = v
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		// The deployment docs disagreed on 8090 vs 8080; the server itself
		// always bound 8090, so that is the single default here.
		c.Server.Port = 8090
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.BaseURL == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.BaseURL = "https://api.openai.com/v1"
		default:
			c.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
		}
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.Model = "gpt-4o"
		default:
			c.LLM.Model = "gemini-2.5-flash"
		}
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.LLM.RPM == 0 {
		c.LLM.RPM = 60
	}
	if c.LLM.QPS == 0 {
		c.LLM.QPS = 2
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 3
	}
	if c.Tavily.MaxResults == 0 {
		c.Tavily.MaxResults = 5
	}
	if c.Tavily.Timeout == 0 {
		c.Tavily.Timeout = 15 * time.Second
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Finnhub.WebSocketURL == "" {
		c.Finnhub.WebSocketURL = "wss://ws.finnhub.io"
	}
	if c.Finnhub.ReconnectDelay == 0 {
		c.Finnhub.ReconnectDelay = 5 * time.Second
	}
	if c.Finnhub.PingInterval == 0 {
		c.Finnhub.PingInterval = 30 * time.Second
	}
	if c.AlphaVantage.BaseURL == "" {
		c.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.AlphaVantage.Timeout == 0 {
		c.AlphaVantage.Timeout = 15 * time.Second
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 10 * time.Second
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "stocksage"
	}
	if c.Cache.QuoteTTL == 0 {
		c.Cache.QuoteTTL = 1 * time.Minute
	}
	if c.Cache.CandlesTTL == 0 {
		c.Cache.CandlesTTL = 15 * time.Minute
	}
	if c.Cache.FinancialsTTL == 0 {
		c.Cache.FinancialsTTL = 6 * time.Hour
	}
	if c.Cache.NewsTTL == 0 {
		c.Cache.NewsTTL = 10 * time.Minute
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 2 * time.Hour
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "stocksage"
	}
	if c.Kafka.AnalysesTopic == "" {
		c.Kafka.AnalysesTopic = "analysis.completed"
	}
	if c.Kafka.RequestsTopic == "" {
		c.Kafka.RequestsTopic = "analysis.requests"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "openai":
			return fmt.Errorf("llm.api_key is required (OPENAI_API_KEY) when using openai")
		default:
			return fmt.Errorf("llm.api_key is required (GEMINI_API_KEY) when using gemini")
		}
	}
	if c.LLM.Provider != "gemini" && c.LLM.Provider != "openai" {
		return fmt.Errorf("llm.provider must be 'gemini' or 'openai', got '%s'", c.LLM.Provider)
	}
	if c.Finnhub.StreamEnabled && len(c.Finnhub.Symbols) == 0 {
		return fmt.Errorf("finnhub.symbols cannot be empty when stream is enabled")
	}
	if c.Finnhub.StreamEnabled && c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required when stream is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// Summary reports which optional integrations are configured, for startup logs.
func (c *Config) Summary() map[string]bool {
	return map[string]bool{
		"llm":           c.LLM.APIKey != "",
		"tavily":        c.Tavily.APIKey != "",
		"finnhub":       c.Finnhub.APIKey != "",
		"alpha_vantage": c.AlphaVantage.APIKey != "",
		"redis":         c.Redis.Enabled,
		"clickhouse":    c.ClickHouse.Enabled,
		"kafka":         c.Kafka.Enabled,
	}
}

func splitHostPort(addr string, defPort int) (string, int) {
	host := addr
	port := defPort
	if i := strings.LastIndex(addr, ":"); i > 0 {
		host = addr[:i]
		if p := addr[i+1:]; p != "" {
			var n int
			if _, err := fmt.Sscanf(p, "%d", &n); err == nil && n > 0 {
				port = n
			}
		}
	}
	return host, port
}

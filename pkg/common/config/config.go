package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	// DevSecret 仅限非生产环境使用
	DevSecret = "dev-secret-change-me-in-production"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type SecurityConfig struct {
	MaxBodySize int64 `json:"maxBodySize"` // 字节
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

func (c CORSConfig) AllowAll() bool {
	for _, o := range c.AllowOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

type JWTAuthConfig struct {
	Secret        string `json:"secret"`
	Issuer        string `json:"issuer"`
	SigningMethod string `json:"signingMethod"`
}

type HasherConfig struct {
	BcryptCost int `json:"bcryptCost"`
}

type MiddlewareConfig struct {
	Security SecurityConfig `json:"security"`
	JWT      JWTAuthConfig  `json:"jwt"`
	CORS     CORSConfig     `json:"cors"`
}

type MongoConfig struct {
	URI            string        `json:"uri"`
	Database       string        `json:"database"`
	Collection     string        `json:"collection"`
	ConnectTimeout time.Duration `json:"connectTimeout"`
}

type DatabaseConfig struct {
	Driver string      `json:"driver"` // mongo | mysql | memory
	Mongo  MongoConfig `json:"mongo"`

	// MySQL 配置
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DBName      string `json:"dbname"`
	UseUnixSock bool   `json:"useUnixSock"` // 为 true 时 Host 为 socket 路径
	MinPoolSize int    `json:"minPoolSize"`
	MaxPoolSize int    `json:"maxPoolSize"`
	LogLevel    string `json:"logLevel"` // GORM 日志级别
}

type DebugConfig struct {
	// ExposeAccountList 是否注册无鉴权的账户列表接口
	ExposeAccountList bool `json:"exposeAccountList"`
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Middleware MiddlewareConfig `json:"middleware"`
	Hasher     HasherConfig     `json:"hasher"`
	Debug      DebugConfig      `json:"debug"`
	LogLevel   string           `json:"logLevel"`
	Env        string           `json:"env"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: ":5000",
		},
		Database: DatabaseConfig{
			Driver: DriverMongo,
			Mongo: MongoConfig{
				URI:            "mongodb://localhost:27017",
				Database:       "accounts",
				Collection:     "users",
				ConnectTimeout: 10 * time.Second,
			},
			Host:        "localhost",
			Port:        3306,
			Username:    "root",
			Password:    "root",
			DBName:      "app",
			MinPoolSize: 5,
			MaxPoolSize: 50,
			LogLevel:    "warn",
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize: 1 << 20,
			},
			JWT: JWTAuthConfig{
				Secret:        DevSecret,
				SigningMethod: "HS256",
			},
			CORS: CORSConfig{
				AllowOrigins:  []string{"*"},
				AllowMethods:  []string{"GET", "POST", "OPTIONS"},
				AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
				ExposeHeaders: []string{"Content-Length"},
				MaxAge:        12 * time.Hour,
			},
		},
		Hasher: HasherConfig{
			BcryptCost: 10,
		},
		LogLevel: "info",
		Env:      EnvDevelopment,
	}
}

// IsProd 是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == EnvProduction
}

// IsDev 开发环境下响应中回显错误详情
func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// defaultServerBodyLimit 与 hertz 自身的默认请求体上限一致
const defaultServerBodyLimit = 4 << 20

// ServerBodyLimit 返回传给 hertz 的请求体上限。它必须高于 MaxBodySize，
// 否则超限请求在到达 BodyLimitMiddleware 之前就被 hertz 直接断开，拿不到 413 JSON 响应
func (c *Config) ServerBodyLimit() int {
	limit := int(c.Middleware.Security.MaxBodySize) * 2
	return max(limit, defaultServerBodyLimit)
}

// Validate 校验启动所需配置
func (c *Config) Validate() error {
	if c.Middleware.JWT.Secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.IsProd() && c.Middleware.JWT.Secret == DevSecret {
		return errors.New("jwt secret must be set in production")
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.Mongo.URI == "" {
			return errors.New("mongo uri must not be empty")
		}
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Address == "" {
		return errors.New("server address must not be empty")
	}
	return nil
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	config := Default()

	if configPath := getConfigPath(); configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file %s: %v", configPath, err)
		}
	}

	loadFromEnv(&config)

	return &config
}

func getConfigPath() string {
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	searchPaths := []string{
		"./config.json",
		"../config.json",
		"/etc/account-service/config.json",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

func loadFromEnv(config *Config) {
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Address = ":" + v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	if v := os.Getenv("NODE_ENV"); v != "" {
		config.Env = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	if v := os.Getenv("EXPOSE_ACCOUNT_LIST"); v != "" {
		config.Debug.ExposeAccountList = parseBool(v)
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			config.Hasher.BcryptCost = cost
		} else {
			hlog.Warnf("Invalid BCRYPT_COST: %v", err)
		}
	}

	// JWT 配置
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Middleware.JWT.Secret = v
	}

	if v := os.Getenv("JWT_ISSUER"); v != "" {
		config.Middleware.JWT.Issuer = v
	}

	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

		validAlgorithms := map[string]bool{
			"hs256": true,
			"hs384": true,
			"hs512": true,
		}

		if validAlgorithms[algorithm] {
			config.Middleware.JWT.SigningMethod = strings.ToUpper(algorithm)
		} else {
			hlog.Warnf("Unsupported JWT algorithm: %s", v)
		}
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("MONGODB_URI"); v != "" {
		config.Database.Mongo.URI = v
	}

	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		config.Database.Mongo.Database = v
	}

	if v := os.Getenv("MONGODB_COLLECTION"); v != "" {
		config.Database.Mongo.Collection = v
	}

	if v := os.Getenv("MONGODB_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Database.Mongo.ConnectTimeout = d
		} else {
			hlog.Warnf("Invalid MONGODB_CONNECT_TIMEOUT format: %v", err)
		}
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}
}

// splitEnvList 按逗号切分并去掉空项
func splitEnvList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel 映射为 hertz 日志级别，默认 info
func (c *Config) HlogLevel() hlog.Level {
	switch c.LogLevel {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

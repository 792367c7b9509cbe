package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr    string        `mapstructure:"addr"`
	Catalog string        `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Lock    LockConfig    `mapstructure:"lock"`
	// 优雅退出
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type StoreConfig struct {
	Name string `mapstructure:"name"`
	// memory, lru, redis, sqlite, mysql
	Backend    string        `mapstructure:"backend"`
	Codec      string        `mapstructure:"codec"`
	Expiration time.Duration `mapstructure:"expiration"`
	LRUSize    int           `mapstructure:"lru_size"`
	Redis      RedisConfig   `mapstructure:"redis"`
	// sqlite 和 mysql 用
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// 多个进程共享 redis 的时候打开
	RemoteLock bool `mapstructure:"remote_lock"`
}

type LockConfig struct {
	// 超过这个时间的临界区会打日志
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	Expiration    time.Duration `mapstructure:"expiration"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryMax      int           `mapstructure:"retry_max"`
}

type TracingConfig struct {
	// none, jaeger, zipkin
	Exporter    string `mapstructure:"exporter"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type MetricsConfig struct {
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

type ShutdownConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Wait     time.Duration `mapstructure:"wait"`
	Callback time.Duration `mapstructure:"callback"`
}

// LoadConfig 读取配置文件和环境变量，环境变量的前缀是 PLUGINSD_
// path 为空的时候看 PLUGINSD_CONFIG，再为空就只用默认值和环境变量
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("catalog", "plugins.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("store.name", "settings")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.codec", "json")
	v.SetDefault("store.expiration", time.Duration(0))
	v.SetDefault("store.lru_size", 128)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.remote_lock", false)
	v.SetDefault("store.dsn", "file:pluginsd.db?cache=shared")
	v.SetDefault("store.table", "snapshots")
	v.SetDefault("lock.slow_threshold", 200*time.Millisecond)
	v.SetDefault("lock.expiration", 10*time.Second)
	v.SetDefault("lock.timeout", time.Second)
	v.SetDefault("lock.retry_interval", 100*time.Millisecond)
	v.SetDefault("lock.retry_max", 50)
	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "pluginsd")
	v.SetDefault("metrics.addr", ":8081")
	v.SetDefault("metrics.namespace", "pluginstate")
	v.SetDefault("shutdown.timeout", 30*time.Second)
	v.SetDefault("shutdown.wait", 10*time.Second)
	v.SetDefault("shutdown.callback", 3*time.Second)

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("PLUGINSD_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("pluginsd: 读取配置文件失败, %w", err)
		}
	}

	v.SetEnvPrefix("PLUGINSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("pluginsd: 解析配置失败, %w", err)
	}
	return c, nil
}

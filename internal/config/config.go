package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`
	Redis      `yaml:"redis"`
	Costing    `yaml:"costing"`
	WorkOrders `yaml:"work_orders"`

	AdminLogin  string   `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass   string   `yaml:"admin_pass" env:"ADMIN_PASS"`
	CORSOrigins []string `yaml:"cors_origins" env-default:"http://localhost:5173"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	User      string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	Password  string `yaml:"db_password" env:"DB_PASSWORD"`
	Host      string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	Port      int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	Name      string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	ParseTime bool   `yaml:"parse_time" env-default:"true"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr    string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Costing struct {
	DefaultHourlyRate float64 `yaml:"default_hourly_rate" env-default:"0"`
	// Сколько продуктов считаем параллельно в calculate-all / close-all
	Parallelism int `yaml:"parallelism" env-default:"4"`
}

type WorkOrders struct {
	Debounce        time.Duration `yaml:"debounce" env-default:"1200ms"`
	BreakStart      string        `yaml:"break_start" env-default:"12:00"`
	BreakEnd        string        `yaml:"break_end" env-default:"12:30"`
	MinCycleSeconds int           `yaml:"min_cycle_seconds" env-default:"1"`
	Timezone        string        `yaml:"timezone" env-default:"UTC"`
}

// Location возвращает часовой пояс цеха, при ошибке: UTC.
func (w WorkOrders) Location() *time.Location {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

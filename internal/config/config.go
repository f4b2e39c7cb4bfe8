package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConf      `yaml:"redis"`
	Listing  ListingConfig  `yaml:"listing"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Images   ImageHostConf  `yaml:"images"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

// UpstreamConfig points at the catalog REST API this panel administers.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url" env:"UPSTREAM_BASE_URL" env-default:"http://localhost:8000/api/v1"`
	Timeout time.Duration `yaml:"timeout" env-default:"15s"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env-default:"catalog_admin_session"`
	Secret     string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TTL        time.Duration `yaml:"ttl" env-default:"12h"`
}

type RedisConf struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type ListingConfig struct {
	PageSize       int           `yaml:"page_size" env-default:"10"`
	SearchDebounce time.Duration `yaml:"search_debounce" env-default:"500ms"`
}

type UploadsConfig struct {
	MaxSize int64 `yaml:"max_size" env-default:"10485760"`
}

// ImageHostConf configures the Cloudinary side channel. Folder is the root
// prefix under which product variant images are placed. BaseDir/BaseURL are
// only used by the local-disk host in development.
type ImageHostConf struct {
	CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
	Folder    string `yaml:"folder" env-default:"the-monk"`
	BaseDir   string `yaml:"base_dir"`
	BaseURL   string `yaml:"base_url"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

package config

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath         = "config/questengine.yaml"
	templatePath        = "config/template/questengine.yaml"
	defaultProcessName  = "Spartan"
	defaultStorePath    = "data/pending_result.json"
	defaultOCRBinary    = "tesseract"
	defaultOCRLanguage  = "eng"
	defaultOCRThreshold = 128
	defaultServerPort   = 8088

	DefaultSuccessMarker   = "COMPLETE"
	DefaultFailureMarker   = "FAILED"
	DefaultReadinessMarker = "11158"
	DefaultPopupMessage    = "Press Enter once the Quest button is visible to continue."
	DefaultPopupKey        = "enter"

	ModeOCR    = "ocr"
	ModeManual = "manual"
)

var (
	ErrRegionNotSet = errors.New("screen region is not set")
	ErrInvalidMode  = errors.New("invalid mode")
)

type Region struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Config is loaded and validated once at startup, then passed by value to
// whatever needs it. Nothing mutates it after Load returns.
type Config struct {
	Debug struct {
		Log bool `yaml:"log"`
	} `yaml:"debug"`
	LogSaveDirectory string `yaml:"logSaveDirectory"`
	Mode             string `yaml:"mode"`
	Host             struct {
		ProcessName string   `yaml:"processName"`
		Executable  string   `yaml:"executable"`
		Args        []string `yaml:"args"`
	} `yaml:"host"`
	Regions struct {
		Timer     Region `yaml:"timer"`
		Status    Region `yaml:"status"`
		Readiness Region `yaml:"readiness"`
	} `yaml:"regions"`
	Markers struct {
		Success   string `yaml:"success"`
		Failure   string `yaml:"failure"`
		Readiness string `yaml:"readiness"`
	} `yaml:"markers"`
	Clicks []Point `yaml:"clicks"`
	Popup  struct {
		Message string `yaml:"message"`
		Key     string `yaml:"key"`
	} `yaml:"popup"`
	OCR struct {
		Binary    string `yaml:"binary"`
		Language  string `yaml:"language"`
		Threshold uint8  `yaml:"threshold"`
	} `yaml:"ocr"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Discord struct {
		Enabled       bool     `yaml:"enabled"`
		Token         string   `yaml:"token"`
		ChannelID     string   `yaml:"channelId"`
		BotAdmins     []string `yaml:"botAdmins"`
		StageMessages bool     `yaml:"stageMessages"`
		UseWebhook    bool     `yaml:"useWebhook"`
		WebhookURL    string   `yaml:"webhookUrl"`
	} `yaml:"discord"`
	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chatId"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
	Server struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"server"`
}

// Load reads the yaml file at path, fills secrets from the environment (and
// a .env file next to the working directory when present), applies defaults
// and validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	// .env is optional
	_ = godotenv.Load()

	cfgPath := getAbsPath(path)
	r, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, fmt.Errorf("error loading %s: %w", path, err)
	}
	defer r.Close()

	cfg := Config{}
	d := yaml.NewDecoder(r)
	if err = d.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("error reading config %s: %w", cfgPath, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	sanitizeDiscordConfig(&cfg)
	sanitizeTelegramConfig(&cfg)

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate fails on the first missing screen region. No capture may be
// attempted until all three are present.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeOCR:
	case ModeManual:
		// Manual mode never reads the screen
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	if c.Regions.Timer.Empty() {
		return fmt.Errorf("%w: timer", ErrRegionNotSet)
	}
	if c.Regions.Status.Empty() {
		return fmt.Errorf("%w: status", ErrRegionNotSet)
	}
	if c.Regions.Readiness.Empty() {
		return fmt.Errorf("%w: readiness", ErrRegionNotSet)
	}

	return nil
}

func applyDefaults(c *Config) {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = ModeOCR
	}
	if c.Host.ProcessName == "" {
		c.Host.ProcessName = defaultProcessName
	}
	if c.Markers.Success == "" {
		c.Markers.Success = DefaultSuccessMarker
	}
	if c.Markers.Failure == "" {
		c.Markers.Failure = DefaultFailureMarker
	}
	if c.Markers.Readiness == "" {
		c.Markers.Readiness = DefaultReadinessMarker
	}
	if c.Popup.Message == "" {
		c.Popup.Message = DefaultPopupMessage
	}
	if c.Popup.Key == "" {
		c.Popup.Key = DefaultPopupKey
	}
	if c.OCR.Binary == "" {
		c.OCR.Binary = defaultOCRBinary
	}
	if c.OCR.Language == "" {
		c.OCR.Language = defaultOCRLanguage
	}
	if c.OCR.Threshold == 0 {
		c.OCR.Threshold = defaultOCRThreshold
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Server.Port <= 0 {
		c.Server.Port = defaultServerPort
	}
}

func applyEnv(c *Config) {
	if v := os.Getenv("QUESTENGINE_DISCORD_TOKEN"); v != "" && c.Discord.Token == "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("QUESTENGINE_DISCORD_WEBHOOK_URL"); v != "" && c.Discord.WebhookURL == "" {
		c.Discord.WebhookURL = v
	}
	if v := os.Getenv("QUESTENGINE_TELEGRAM_TOKEN"); v != "" && c.Telegram.Token == "" {
		c.Telegram.Token = v
	}
}

func sanitizeDiscordConfig(cfg *Config) {
	if !cfg.Discord.Enabled {
		return
	}
	useWebhook := cfg.Discord.UseWebhook
	webhookURL := strings.TrimSpace(cfg.Discord.WebhookURL)
	token := strings.TrimSpace(cfg.Discord.Token)
	channelID := strings.TrimSpace(cfg.Discord.ChannelID)

	if (useWebhook && webhookURL == "") || (!useWebhook && (token == "" || channelID == "")) {
		cfg.Discord.Enabled = false
	}
}

func sanitizeTelegramConfig(cfg *Config) {
	if cfg.Telegram.Enabled && (strings.TrimSpace(cfg.Telegram.Token) == "" || cfg.Telegram.ChatID == 0) {
		cfg.Telegram.Enabled = false
	}
}

// CreateFromTemplate copies the bundled template config to dst. It refuses to
// overwrite an existing configuration.
func CreateFromTemplate(dst string) error {
	if dst == "" {
		return errors.New("destination cannot be empty")
	}

	if _, err := os.Stat(getAbsPath(dst)); !os.IsNotExist(err) {
		return errors.New("configuration already exists at " + dst)
	}

	err := cp.Copy(getAbsPath(templatePath), getAbsPath(dst))
	if err != nil {
		return fmt.Errorf("error copying template: %w", err)
	}

	return nil
}

func getAbsPath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		return relPath
	}
	return filepath.Join(cwd, relPath)
}

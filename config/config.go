package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"cellseg/internal/domain/entity"
)

// DefaultConfigFile — файл настроек, который читается, если путь не задан.
const DefaultConfigFile = "cellseg.yaml"

// Config хранит все настройки пакетного запуска.
type Config struct {
	InputDir  string `yaml:"inputDir"`
	OutputDir string `yaml:"outputDir"`

	Model struct {
		Name    string `yaml:"name"`
		Dir     string `yaml:"dir"`
		Backend string `yaml:"backend"` // auto, cuda, opencl, cpu
	} `yaml:"model"`

	Segmentation struct {
		Diameter             int     `yaml:"diameter"`
		Channel              string  `yaml:"channel"` // gray, red, green, blue
		CellProbThreshold    float64 `yaml:"cellProbThreshold"`
		FlowThreshold        float64 `yaml:"flowThreshold"`
		Normalize            bool    `yaml:"normalize"`
		ChannelAxisThreshold int     `yaml:"channelAxisThreshold"`
	} `yaml:"segmentation"`

	Output struct {
		OverlaySuffix    string `yaml:"overlaySuffix"` // viz или overlay
		NormalizeOverlay bool   `yaml:"normalizeOverlay"`
		WriteROIs        bool   `yaml:"writeROIs"`
	} `yaml:"output"`

	Logging struct {
		Debug bool   `yaml:"debug"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chatID"`
	} `yaml:"telegram"`
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() *Config {
	cfg := &Config{
		InputDir:  "input",
		OutputDir: "output",
	}

	// Пустое имя означает модель по умолчанию для текущей сборки.
	cfg.Model.Name = ""
	cfg.Model.Dir = "models"
	cfg.Model.Backend = string(entity.BackendAuto)

	cfg.Segmentation.Diameter = 10
	cfg.Segmentation.Channel = "gray"
	cfg.Segmentation.CellProbThreshold = -1.0
	cfg.Segmentation.FlowThreshold = 0.6
	cfg.Segmentation.Normalize = true
	cfg.Segmentation.ChannelAxisThreshold = 5

	cfg.Output.OverlaySuffix = "viz"
	cfg.Output.WriteROIs = true

	return cfg
}

// Load собирает настройки: значения по умолчанию, затем YAML-файл
// (его отсутствие не ошибка), затем .env и переменные окружения.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrapf(err, "read config %s", path)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}

	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("CELLSEG_INPUT_DIR", &c.InputDir)
	setString("CELLSEG_OUTPUT_DIR", &c.OutputDir)
	setString("CELLSEG_MODEL", &c.Model.Name)
	setString("CELLSEG_MODEL_DIR", &c.Model.Dir)
	setString("CELLSEG_BACKEND", &c.Model.Backend)
	setString("TELEGRAM_TOKEN", &c.Telegram.Token)

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "TELEGRAM_CHAT_ID %q", v)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Segmentation.Diameter <= 0 {
		return errors.Errorf("diameter must be a positive integer, got %d", c.Segmentation.Diameter)
	}
	if c.Segmentation.ChannelAxisThreshold <= 0 {
		return errors.Errorf("channel axis threshold must be positive, got %d", c.Segmentation.ChannelAxisThreshold)
	}
	if _, err := c.Channel(); err != nil {
		return err
	}
	if _, err := c.Backend(); err != nil {
		return err
	}
	switch c.Output.OverlaySuffix {
	case "viz", "overlay":
	default:
		return errors.Errorf("overlay suffix must be viz or overlay, got %q", c.Output.OverlaySuffix)
	}
	return nil
}

// Channel возвращает разобранный канал.
func (c *Config) Channel() (entity.Channel, error) {
	return entity.ParseChannel(c.Segmentation.Channel)
}

// Backend возвращает разобранный бэкенд.
func (c *Config) Backend() (entity.Backend, error) {
	return entity.ParseBackend(c.Model.Backend)
}

// EvalParams собирает параметры модели.
func (c *Config) EvalParams() entity.EvalParams {
	params := entity.DefaultEvalParams(float64(c.Segmentation.Diameter))
	params.CellProbThreshold = c.Segmentation.CellProbThreshold
	params.FlowThreshold = c.Segmentation.FlowThreshold
	params.Normalize = c.Segmentation.Normalize
	return params
}

// NotifyEnabled сообщает, заданы ли токен и чат Telegram.
func (c *Config) NotifyEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

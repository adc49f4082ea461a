package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const DefaultConfigPath = "./configs/config.yaml"

// Loader 配置加载器
type Loader struct {
	configPath string
}

// NewLoader 创建配置加载器，路径为空时使用默认路径
func NewLoader(configPath string) *Loader {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &Loader{configPath: configPath}
}

// Load 从配置文件加载配置。
// 环境变量（WSCOMPRESS_ 前缀，层级用下划线分隔）可以覆盖文件中的同名配置项。
func (l *Loader) Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(l.configPath)
	v.SetConfigType(configType(l.configPath))

	v.SetEnvPrefix("WSCOMPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("解析配置失败: %w", err)
	}
	return config, nil
}

// configType 根据文件扩展名推断配置格式，无法识别时按yaml处理
func configType(path string) string {
	switch filepath.Ext(path) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// LoadFromPath 从指定路径加载配置的便捷入口
func LoadFromPath(configPath string) (Config, error) {
	return NewLoader(configPath).Load()
}

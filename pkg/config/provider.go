package config

import (
	"github.com/samber/do/v2"
)

// NewPackage 返回配置包的服务包，把各个配置段以值的形式注册进容器（Eager Loading）
func NewPackage(config Config) func(do.Injector) {
	return do.Package(
		do.Eager(config.App),
		do.Eager(config.Server),
		do.Eager(config.Log),
		do.Eager(config.Redis),
		do.Eager(config.JWT),
		do.Eager(config.Compression),
	)
}

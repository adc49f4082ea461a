package upgrader

import (
	"github.com/samber/do/v2"
)

// Package 定义升级器包的服务包，使用 Package Loading 模式
var Package = do.Package(
	do.Lazy(New),
)

package session

import (
	"github.com/samber/do/v2"
)

// Package 定义 Session 包的服务包，使用 Package Loading 模式。
// Builder 依赖Redis客户端，懒加载到首次构建session时才初始化。
var Package = do.Package(
	do.Lazy(NewRedisSessionBuilder),
)

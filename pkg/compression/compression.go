package compression

import (
	"github.com/YaoAzure/wscompress/pkg/pmbzip2"
)

// Config 压缩配置
type Config struct {
	// Enabled 是否启用 permessage-bzip2 压缩扩展
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestMaxCompressLevel 请求对端限制其发送方向的压缩级别，范围1-9，0表示不请求。
	// 服务端用它限制 c2s 方向，客户端用它限制 s2c 方向。
	RequestMaxCompressLevel int `yaml:"requestMaxCompressLevel" mapstructure:"requestMaxCompressLevel"`
	// AcceptMaxCompressLevel 客户端拨号时是否声明接受服务端的级别上限请求
	AcceptMaxCompressLevel bool `yaml:"acceptMaxCompressLevel" mapstructure:"acceptMaxCompressLevel"`
}

// ToExtension 构造服务端握手协商用的扩展对象
func (c *Config) ToExtension() *pmbzip2.Extension {
	return &pmbzip2.Extension{
		RequestMaxCompressLevel: c.RequestMaxCompressLevel,
	}
}

// ToOffer 构造客户端拨号时携带的扩展 offer
func (c *Config) ToOffer() (*pmbzip2.Offer, error) {
	return pmbzip2.NewOffer(c.AcceptMaxCompressLevel, c.RequestMaxCompressLevel)
}

// State 压缩状态，包含协商后的处理器
type State struct {
	// Enabled 压缩是否协商成功
	Enabled bool
	// Processor 绑定在连接上的 permessage-bzip2 处理器，负责逐消息的压缩和解压
	Processor *pmbzip2.Processor
}

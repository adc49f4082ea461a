package pmbzip2

import (
	"fmt"
	"strings"
)

// Offer 是客户端（发起方）向服务端提出的 permessage-bzip2 扩展参数。
type Offer struct {
	// AcceptMaxCompressLevel 为 true 时，客户端承诺接受服务端对
	// c2s 方向压缩级别的上限请求。
	// 注意：程序内构造的缺省值是 true，但从 wire 解析时缺少对应 token
	// 即为 false，因此 false 的 offer 序列化后无法往返还原出 true。
	AcceptMaxCompressLevel bool

	// RequestMaxCompressLevel 非 0 时，客户端请求服务端将 s2c 方向的
	// 压缩级别限制在该值以内，取值 1-9；0 表示不请求。
	RequestMaxCompressLevel int
}

// NewOffer 构造一个 offer，级别请求必须为 0 或落在 1-9 之间。
func NewOffer(acceptMaxCompressLevel bool, requestMaxCompressLevel int) (*Offer, error) {
	if err := checkLevel("requestMaxCompressLevel", requestMaxCompressLevel); err != nil {
		return nil, err
	}
	return &Offer{
		AcceptMaxCompressLevel:  acceptMaxCompressLevel,
		RequestMaxCompressLevel: requestMaxCompressLevel,
	}, nil
}

// ParseOffer 解析客户端提交的扩展 offer 参数。
// 可识别的参数：c2s_max_compress_level（flag）、s2c_max_compress_level（级别 1-9）。
// 其余参数名、重复出现、非法取值均返回相应的解析错误。
func ParseOffer(params Params) (*Offer, error) {
	offer := &Offer{}
	for name, values := range params {
		val, err := singleValue(name, values)
		if err != nil {
			return nil, err
		}
		switch name {
		case paramC2SMaxCompressLevel:
			if err := parseFlagValue(name, val); err != nil {
				return nil, err
			}
			offer.AcceptMaxCompressLevel = true
		case paramS2CMaxCompressLevel:
			level, err := parseLevelValue(name, val)
			if err != nil {
				return nil, err
			}
			offer.RequestMaxCompressLevel = level
		default:
			return nil, &UnknownParameterError{Extension: ExtensionName, Param: name}
		}
	}
	return offer, nil
}

// String 返回发送给服务端的扩展配置串，顺序固定：
// 扩展名、c2s_max_compress_level（如果接受上限）、s2c_max_compress_level=<n>（如果有请求）。
func (o *Offer) String() string {
	var b strings.Builder
	b.WriteString(ExtensionName)
	if o.AcceptMaxCompressLevel {
		b.WriteString("; ")
		b.WriteString(paramC2SMaxCompressLevel)
	}
	if o.RequestMaxCompressLevel != 0 {
		fmt.Fprintf(&b, "; %s=%d", paramS2CMaxCompressLevel, o.RequestMaxCompressLevel)
	}
	return b.String()
}

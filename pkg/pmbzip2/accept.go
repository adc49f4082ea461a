package pmbzip2

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilOffer 表示构造 Accept 时没有提供被应答的 offer。
var ErrNilOffer = errors.New("accept 缺少被应答的 offer")

// Accept 是服务端（应答方）对一个 offer 的接受决定。
// Accept 只由服务端协商逻辑在程序内构造并序列化到 wire，没有对应的解析操作；
// 客户端看到的只是它的 wire 文本（解析为 Response）。
type Accept struct {
	// Offer 是被应答的 offer，Accept 在协商期间独占持有它。
	Offer *Offer

	// RequestMaxCompressLevel 非 0 时，服务端请求客户端将 c2s 方向的
	// 压缩级别限制在该值以内，取值 1-9；0 表示不请求。
	RequestMaxCompressLevel int
}

// NewAccept 基于 offer 构造服务端的接受应答。
// 级别请求必须为 0 或 1-9；只有 offer 声明了 AcceptMaxCompressLevel
// 时才允许非 0 请求，否则返回 UnsupportedFeatureError。
func NewAccept(offer *Offer, requestMaxCompressLevel int) (*Accept, error) {
	if offer == nil {
		return nil, ErrNilOffer
	}
	if err := checkLevel("requestMaxCompressLevel", requestMaxCompressLevel); err != nil {
		return nil, err
	}
	if requestMaxCompressLevel != 0 && !offer.AcceptMaxCompressLevel {
		return nil, &UnsupportedFeatureError{
			Extension: ExtensionName,
			Param:     paramC2SMaxCompressLevel,
			Level:     requestMaxCompressLevel,
		}
	}
	return &Accept{
		Offer:                   offer,
		RequestMaxCompressLevel: requestMaxCompressLevel,
	}, nil
}

// String 返回回给客户端的扩展配置串。
// s2c 一项按 wire 兼容性要求原样回显 offer 中的请求值，绝不重新推导。
func (a *Accept) String() string {
	var b strings.Builder
	b.WriteString(ExtensionName)
	if a.Offer.RequestMaxCompressLevel != 0 {
		fmt.Fprintf(&b, "; %s=%d", paramS2CMaxCompressLevel, a.Offer.RequestMaxCompressLevel)
	}
	if a.RequestMaxCompressLevel != 0 {
		fmt.Fprintf(&b, "; %s=%d", paramC2SMaxCompressLevel, a.RequestMaxCompressLevel)
	}
	return b.String()
}

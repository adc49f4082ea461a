package pmbzip2

import (
	"bytes"
	"strconv"

	"github.com/gobwas/httphead"
)

// 外层握手边界：gobwas/ws 把 Sec-WebSocket-Extensions 头拆成
// httphead.Option，这里负责 Option 与参数文法之间的互转。

var extensionNameBytes = []byte(ExtensionName)

// Extension 在 gobwas/ws 的握手回调中完成服务端侧的 permessage-bzip2 协商。
// 用法与 wsflate.Extension 相同：把 Negotiate 挂到 ws.Upgrader.Negotiate，
// 升级完成后通过 Accepted 取协商结果。
type Extension struct {
	// RequestMaxCompressLevel 非 0 时，服务端在应答中请求客户端
	// 限制 c2s 方向的压缩级别（前提是客户端 offer 声明了接受上限）。
	RequestMaxCompressLevel int

	accept *Accept
}

// Negotiate 处理客户端提交的单个扩展项。
// 名称不匹配或已经接受过一个 offer 时返回零值 Option 表示跳过；
// offer 解析失败的错误会使整个握手失败。
func (e *Extension) Negotiate(opt httphead.Option) (httphead.Option, error) {
	if !bytes.Equal(opt.Name, extensionNameBytes) {
		return httphead.Option{}, nil
	}
	if e.accept != nil {
		// 同名扩展重复出现，只接受第一个。
		return httphead.Option{}, nil
	}
	offer, err := ParseOffer(optionParams(opt))
	if err != nil {
		return httphead.Option{}, err
	}
	request := e.RequestMaxCompressLevel
	if !offer.AcceptMaxCompressLevel {
		// 客户端不接受级别上限，静默放弃本端的请求而不是拒绝握手。
		request = 0
	}
	accept, err := NewAccept(offer, request)
	if err != nil {
		return httphead.Option{}, err
	}
	e.accept = accept
	return accept.Option(), nil
}

// Accepted 返回协商出的 Accept。只有 Negotiate 成功接受过 offer 时 ok 为 true。
func (e *Extension) Accepted() (accept *Accept, ok bool) {
	return e.accept, e.accept != nil
}

// Option 返回 offer 对应的扩展项，供 ws.Dialer.Extensions 使用。
func (o *Offer) Option() httphead.Option {
	opt := httphead.Option{Name: extensionNameBytes}
	if o.AcceptMaxCompressLevel {
		opt.Parameters.Set([]byte(paramC2SMaxCompressLevel), nil)
	}
	if o.RequestMaxCompressLevel != 0 {
		opt.Parameters.Set(
			[]byte(paramS2CMaxCompressLevel),
			[]byte(strconv.Itoa(o.RequestMaxCompressLevel)),
		)
	}
	return opt
}

// Option 返回 accept 对应的扩展项。参数顺序与 String 一致：
// 先原样回显 offer 请求的 s2c 级别，再带上本端请求的 c2s 级别。
func (a *Accept) Option() httphead.Option {
	opt := httphead.Option{Name: extensionNameBytes}
	if a.Offer.RequestMaxCompressLevel != 0 {
		opt.Parameters.Set(
			[]byte(paramS2CMaxCompressLevel),
			[]byte(strconv.Itoa(a.Offer.RequestMaxCompressLevel)),
		)
	}
	if a.RequestMaxCompressLevel != 0 {
		opt.Parameters.Set(
			[]byte(paramC2SMaxCompressLevel),
			[]byte(strconv.Itoa(a.RequestMaxCompressLevel)),
		)
	}
	return opt
}

// ParseResponseOptions 从握手应答的扩展列表中找到 permessage-bzip2 并解析。
// 服务端没有回显本扩展时 ok 为 false，表示按未压缩模式继续。
func ParseResponseOptions(opts []httphead.Option) (resp *Response, ok bool, err error) {
	for _, opt := range opts {
		if !bytes.Equal(opt.Name, extensionNameBytes) {
			continue
		}
		resp, err = ParseResponse(optionParams(opt))
		if err != nil {
			return nil, true, err
		}
		return resp, true, nil
	}
	return nil, false, nil
}

// optionParams 把 httphead.Option 的参数收集成解析操作需要的原始参数集合，
// 同名参数的多次出现按顺序归入同一个序列。
func optionParams(opt httphead.Option) Params {
	params := make(Params)
	opt.Parameters.ForEach(func(key, value []byte) bool {
		params[string(key)] = append(params[string(key)], string(value))
		return true
	})
	return params
}

// Package pmbzip2 实现 permessage-bzip2 WebSocket 扩展：
// 握手期间的参数协商（offer / accept / response），以及协商结果驱动的
// 逐消息压缩、解压生命周期（Processor）。
//
// 协商对象（Offer、Accept、Response）构造后不可变，可以在多个 goroutine
// 之间安全共享；Processor 的两个方向相互独立，但同一方向上的调用必须串行。
package pmbzip2

// ExtensionName 是本扩展在 Sec-WebSocket-Extensions 头中使用的名称。
const ExtensionName = "permessage-bzip2"

// 压缩级别的取值范围。0 在协商参数中表示“未请求”，不是合法的压缩级别。
const (
	MinCompressLevel = 1
	MaxCompressLevel = 9

	// DefaultCompressLevel 是协商双方都未请求级别上限时使用的级别。
	DefaultCompressLevel = 9
)

// 扩展参数名。两个参数名本身都是合法 token，
// 但在 offer/accept/response 三类消息中允许的 (消息, 参数) 组合不同。
const (
	// paramC2SMaxCompressLevel 在 offer 中是 flag（客户端声明接受级别上限），
	// 在 accept/response 中携带服务端请求的 c2s 方向级别上限。
	paramC2SMaxCompressLevel = "c2s_max_compress_level"
	// paramS2CMaxCompressLevel 携带客户端请求的 s2c 方向级别上限。
	paramS2CMaxCompressLevel = "s2c_max_compress_level"
)

// Params 是协商消息的原始参数集合：参数名到按出现顺序排列的原始值。
// flag 形式（无 =value）的出现用空字符串表示。
// 同名参数多次出现时序列长度大于 1，解析时视为硬错误。
type Params map[string][]string

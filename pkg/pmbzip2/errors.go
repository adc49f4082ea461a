package pmbzip2

import "fmt"

// 协商解析错误是一个封闭集合，每种错误携带结构化字段（扩展名、参数名、原始值），
// 调用方可以用 errors.As 按类别分支，并据此向对端回报精确的协议违规信息。
// 所有解析错误对本次协商都是致命的：拒绝该 offer/response 并使握手失败，不重试。

// DuplicateParameterError 表示同一个扩展参数在一条协商消息中出现了多次。
type DuplicateParameterError struct {
	Extension string
	Param     string
}

func (e *DuplicateParameterError) Error() string {
	return fmt.Sprintf("扩展 %q 的参数 %q 重复出现", e.Extension, e.Param)
}

// UnknownParameterError 表示协商消息中出现了该消息类型不认识的参数。
type UnknownParameterError struct {
	Extension string
	Param     string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("扩展 %q 不支持参数 %q", e.Extension, e.Param)
}

// InvalidParameterValueError 表示参数值非法：
// flag 参数带了显式值，或级别参数的值不在 "1".."9" 之内。
type InvalidParameterValueError struct {
	Extension string
	Param     string
	Value     string
}

func (e *InvalidParameterValueError) Error() string {
	return fmt.Sprintf("扩展 %q 的参数 %q 取值 %q 非法", e.Extension, e.Param, e.Value)
}

// UnsupportedFeatureError 表示请求了对端没有声明支持的能力，
// 例如对端 offer 未携带 c2s_max_compress_level 时仍请求级别上限。
type UnsupportedFeatureError struct {
	Extension string
	Param     string
	Level     int
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("扩展 %q 请求级别上限 %d 失败: 对端未声明支持 %q", e.Extension, e.Level, e.Param)
}

// ConstructionError 表示构造函数被直接传入了非法取值。
// 经由解析函数到达构造函数的值都已校验过，出现该错误说明调用方存在代码缺陷。
type ConstructionError struct {
	Field string
	Value int
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("构造参数 %s 的取值 %d 非法: 允许 0 或 %d-%d", e.Field, e.Value, MinCompressLevel, MaxCompressLevel)
}

// CodecError 表示压缩流在运行期损坏（通常是解压到了畸形数据）。
// 压缩流中途损坏不可恢复，调用方应视其为连接级致命错误，关闭连接而非重试。
type CodecError struct {
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("压缩流已损坏: %v", e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

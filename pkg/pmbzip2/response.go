package pmbzip2

// Response 是客户端解析服务端应答后得到的最终协商结果：
// 两个方向各自的压缩级别上限，与最初由谁请求无关。0 表示未设上限。
// Response 只被解析，从不序列化。
type Response struct {
	C2SMaxCompressLevel int
	S2CMaxCompressLevel int
}

// ParseResponse 解析服务端回显的扩展参数。
// 两个参数都是可选的级别参数（1-9），重复出现、未知参数、非法取值的
// 处理规则与 ParseOffer 一致。
func ParseResponse(params Params) (*Response, error) {
	resp := &Response{}
	for name, values := range params {
		val, err := singleValue(name, values)
		if err != nil {
			return nil, err
		}
		switch name {
		case paramC2SMaxCompressLevel:
			level, err := parseLevelValue(name, val)
			if err != nil {
				return nil, err
			}
			resp.C2SMaxCompressLevel = level
		case paramS2CMaxCompressLevel:
			level, err := parseLevelValue(name, val)
			if err != nil {
				return nil, err
			}
			resp.S2CMaxCompressLevel = level
		default:
			return nil, &UnknownParameterError{Extension: ExtensionName, Param: name}
		}
	}
	return resp, nil
}

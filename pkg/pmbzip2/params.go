package pmbzip2

// 三类协商消息共用的参数文法。所有参数都是可选的，缺省值在各消息类型中定义。

// singleValue 校验参数只出现一次并取出唯一的原始值。
func singleValue(name string, values []string) (string, error) {
	if len(values) > 1 {
		return "", &DuplicateParameterError{Extension: ExtensionName, Param: name}
	}
	if len(values) == 0 {
		// 出现过但没有记录到值，等价于 flag 形式的出现。
		return "", nil
	}
	return values[0], nil
}

// parseFlagValue 校验 flag 参数：在 wire 上必须以裸 token 出现，不允许携带显式值。
func parseFlagValue(name, value string) error {
	if value != "" {
		return &InvalidParameterValueError{Extension: ExtensionName, Param: name, Value: value}
	}
	return nil
}

// parseLevelValue 校验级别参数：值必须是字面的十进制数字 "1".."9"。
// "0"、空串、多位数、非数字一律非法。
func parseLevelValue(name, value string) (int, error) {
	if len(value) == 1 && value[0] >= '1' && value[0] <= '9' {
		return int(value[0] - '0'), nil
	}
	return 0, &InvalidParameterValueError{Extension: ExtensionName, Param: name, Value: value}
}

// checkLevel 校验程序内直接传入的级别请求：0 表示未请求，否则必须落在允许区间内。
func checkLevel(field string, level int) error {
	if level != 0 && (level < MinCompressLevel || level > MaxCompressLevel) {
		return &ConstructionError{Field: field, Value: level}
	}
	return nil
}

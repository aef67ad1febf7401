package domain

import "strings"

// LEI 结构: 前 4 位为 LOU 标识, 第 5-6 位保留, 第 7-18 位为实体标识, 末 2 位为校验位。
// 校验算法为 ISO 7064 MOD 97-10: 字母映射为 10..35 后拼接成数字串, 模 97 余 1 为有效。

// IsValidLEI 校验 LEI 格式与校验位
func IsValidLEI(lei string) bool {
	code := strings.ToUpper(strings.TrimSpace(lei))
	if len(code) != 20 {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	// 末两位必须是数字校验位
	if code[18] < '0' || code[18] > '9' || code[19] < '0' || code[19] > '9' {
		return false
	}
	return leiMod97(code) == 1
}

// NormalizeLEI 去除空白并转大写，无效时返回空串
func NormalizeLEI(lei string) string {
	if !IsValidLEI(lei) {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(lei))
}

// ExtractLOU 提取发码机构标识（前 4 位），无效时返回空串
func ExtractLOU(lei string) string {
	code := NormalizeLEI(lei)
	if code == "" {
		return ""
	}
	return code[0:4]
}

// ExtractEntityIdentifier 提取实体标识（第 7-18 位），无效时返回空串
func ExtractEntityIdentifier(lei string) string {
	code := NormalizeLEI(lei)
	if code == "" {
		return ""
	}
	return code[6:18]
}

// IsFromLOU 判断 LEI 是否由指定 LOU 发码（大小写不敏感）
func IsFromLOU(lei, lou string) bool {
	extracted := ExtractLOU(lei)
	if extracted == "" {
		return false
	}
	return extracted == strings.ToUpper(strings.TrimSpace(lou))
}

// leiMod97 对映射后的数字串逐位取模，避免大数运算
func leiMod97(code string) int {
	remainder := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= '0' && c <= '9' {
			remainder = (remainder*10 + int(c-'0')) % 97
		} else {
			v := int(c-'A') + 10
			remainder = (remainder*100 + v) % 97
		}
	}
	return remainder
}

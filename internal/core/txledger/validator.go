package txledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/txledger/pkg/types"
)

// statusesRequiringFrom 进入这些状态后必须带有发送方地址
var statusesRequiringFrom = map[types.TxStatus]bool{
	types.TxStatusSigned:    true,
	types.TxStatusSubmitted: true,
	types.TxStatusConfirmed: true,
}

// ValidateTxMeta 校验一条记录，返回第一个违规字段的校验错误
func ValidateTxMeta(tx *types.TxMeta) error {
	if tx == nil {
		return NewValidationError("tx", nil, "交易记录不能为空")
	}
	if tx.ID == "" {
		return NewValidationError("id", tx.ID, "交易ID不能为空")
	}
	if !tx.Status.IsValid() {
		return NewValidationError("status", string(tx.Status), "未知的交易状态")
	}
	if err := ValidateTxParams(tx.TxParams); err != nil {
		return err
	}
	if statusesRequiringFrom[tx.Status] && tx.From() == "" {
		return NewValidationError("txParams.from", "", "该状态要求提供 from 地址")
	}
	return nil
}

// ValidateTxParams 校验参数块：所有出现的字段都必须是 0x 前缀的十六进制字符串，
// from/to 还必须是 20 字节地址
func ValidateTxParams(params *types.TxParams) error {
	if params == nil {
		return nil
	}
	for _, field := range params.Fields() {
		if field.Value == "" {
			continue
		}
		if !isHexString(field.Value) {
			return NewValidationError("txParams."+field.Name, field.Value, "必须是 0x 前缀的十六进制字符串")
		}
		if (field.Name == "from" || field.Name == "to") && !common.IsHexAddress(field.Value) {
			return NewValidationError("txParams."+field.Name, field.Value, "不是合法的地址")
		}
	}
	return nil
}

// isHexString 0x 前缀后跟零个或多个十六进制字符，允许奇数长度
func isHexString(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// sameAddress 地址比较：两侧都是合法地址时按20字节比较，否则忽略大小写比较
func sameAddress(a, b string) bool {
	if common.IsHexAddress(a) && common.IsHexAddress(b) {
		return common.HexToAddress(a) == common.HexToAddress(b)
	}
	return strings.EqualFold(a, b)
}

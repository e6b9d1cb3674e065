package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/red23-platform/internal/constants"
)

// 推广码字符表去掉了易混淆的 I、O、0、1。
const referralCodeAlphabet = constants.ReferralCodeAlphabet

const suggestionCount = 3

// 不允许注册为推广码的保留词
var reservedReferralCodes = map[string]struct{}{
	"ADMIN":    {},
	"SUPPORT":  {},
	"SYSTEM":   {},
	"RED23":    {},
	"REFERRAL": {},
	"REWARD":   {},
	"BONUS":    {},
	"TEST":     {},
}

// CodeValidationResult 推广码格式校验结果
type CodeValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// NormalizeReferralCode 统一推广码写法（去空白并大写）
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateReferralCodeFormat 校验推广码格式，校验失败时附带替代建议
func ValidateReferralCodeFormat(code string) CodeValidationResult {
	normalized := NormalizeReferralCode(code)

	if len(normalized) < constants.ReferralCodeMinLength {
		return invalidCodeResult("too_short", normalized)
	}
	if len(normalized) > constants.ReferralCodeMaxLength {
		return invalidCodeResult("too_long", normalized)
	}
	for _, ch := range normalized {
		if !strings.ContainsRune(referralCodeAlphabet, ch) {
			return invalidCodeResult("invalid_characters", normalized)
		}
	}
	if _, reserved := reservedReferralCodes[normalized]; reserved {
		return invalidCodeResult("reserved_word", normalized)
	}
	return CodeValidationResult{IsValid: true}
}

func invalidCodeResult(reason, normalized string) CodeValidationResult {
	return CodeValidationResult{
		IsValid:     false,
		Reason:      reason,
		Suggestions: suggestReferralCodes(normalized),
	}
}

// suggestReferralCodes 基于输入推导合法的替代推广码
// 保留输入中合法的前缀，再补随机字符凑齐长度。
func suggestReferralCodes(normalized string) []string {
	base := sanitizeReferralCode(normalized)
	if len(base) > constants.ReferralCodeMinLength {
		base = base[:constants.ReferralCodeMinLength]
	}

	suggestions := make([]string, 0, suggestionCount)
	seen := map[string]struct{}{}
	for attempt := 0; attempt < suggestionCount*4 && len(suggestions) < suggestionCount; attempt++ {
		suffix, err := generateReferralCode(constants.ReferralCodeMinLength + 2 - len(base))
		if err != nil {
			return suggestions
		}
		candidate := base + suffix
		if _, reserved := reservedReferralCodes[candidate]; reserved {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		suggestions = append(suggestions, candidate)
	}
	return suggestions
}

// sanitizeReferralCode 仅保留字符表内的字符
func sanitizeReferralCode(code string) string {
	var builder strings.Builder
	for _, ch := range NormalizeReferralCode(code) {
		if strings.ContainsRune(referralCodeAlphabet, ch) {
			builder.WriteRune(ch)
		}
	}
	return builder.String()
}

// generateReferralCode 生成指定长度的随机推广码
func generateReferralCode(length int) (string, error) {
	if length <= 0 {
		length = constants.ReferralCodeLength
	}
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		ch, err := randomAlphabetChar()
		if err != nil {
			return "", err
		}
		builder.WriteString(ch)
	}
	return builder.String(), nil
}

func randomAlphabetChar() (string, error) {
	index, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeAlphabet))))
	if err != nil {
		return "", err
	}
	return string(referralCodeAlphabet[index.Int64()]), nil
}

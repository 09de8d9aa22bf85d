package model

import (
	"encoding/json"
	"strconv"
)

// addressIDKeys lists the profile fields that may carry an address id, in the
// order they are preferred.
var addressIDKeys = []string{"default_addr_id", "biz_addr_id", "private_addr_id"}

// UserInfo is the decoded user profile document. The upstream schema is not
// fixed, so fields are looked up by name.
type UserInfo map[string]any

// ParseUserInfo decodes a raw profile payload. Non-object payloads yield an
// empty UserInfo.
func ParseUserInfo(raw []byte) UserInfo {
	var info UserInfo
	if err := json.Unmarshal(raw, &info); err != nil || info == nil {
		return UserInfo{}
	}
	return info
}

// AddressID returns the first positive integer among default_addr_id,
// biz_addr_id and private_addr_id.
func (u UserInfo) AddressID() (int64, bool) {
	for _, key := range addressIDKeys {
		if v, ok := integerField(u[key], false); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// CompanyID returns comp_id or company_id. Digit strings are accepted.
func (u UserInfo) CompanyID() (int64, bool) {
	for _, key := range []string{"comp_id", "company_id"} {
		if v, ok := integerField(u[key], true); ok && v != 0 {
			return v, true
		}
	}
	return 0, false
}

// DefaultLang returns default_lang, falling back to fallback.
func (u UserInfo) DefaultLang(fallback string) string {
	if s, ok := u["default_lang"].(string); ok && s != "" {
		return s
	}
	return fallback
}

// BudgetSummary projects the budget fields of the profile.
func (u UserInfo) BudgetSummary() BudgetSummary {
	return BudgetSummary{
		Budget:        u["budget"],
		BudgetBalance: u["budget_balance"],
		Cycle:         u["cycle"],
	}
}

// BudgetSummary mirrors the upstream budget fields without reinterpreting them.
type BudgetSummary struct {
	Budget        any `json:"budget"`
	BudgetBalance any `json:"budget_balance"`
	Cycle         any `json:"cycle"`
}

// integerField accepts JSON numbers that hold whole values and, when
// allowDigits is set, strings made only of digits.
func integerField(v any, allowDigits bool) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		if !allowDigits || n == "" {
			return 0, false
		}
		for _, r := range n {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

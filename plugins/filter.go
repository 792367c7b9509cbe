package plugins

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAll      Status = "all"
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
	StatusNew      Status = "new"
)

// ParseStatus 空字符串当成 all
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(s)); st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusEnabled, StatusDisabled, StatusNew:
		return st, nil
	default:
		return "", fmt.Errorf("%w, 未知状态 %q", ErrInvalidFilter, s)
	}
}

type Filter struct {
	Status Status
	// 不区分大小写，匹配名字、描述、作者和标签
	Search string
}

func (f Filter) Match(v View) bool {
	switch f.Status {
	case StatusEnabled:
		if !v.Enabled {
			return false
		}
	case StatusDisabled:
		if v.Enabled {
			return false
		}
	case StatusNew:
		if !v.New {
			return false
		}
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(v.Name), search) ||
		strings.Contains(strings.ToLower(v.Description), search) {
		return true
	}
	for _, a := range v.Authors {
		if strings.Contains(strings.ToLower(a), search) {
			return true
		}
	}
	for _, t := range v.Tags {
		if strings.Contains(strings.ToLower(t), search) {
			return true
		}
	}
	return false
}

package plugins

import (
	"encoding/json"
	"fmt"
)

type OptionType string

const (
	OptionString  OptionType = "string"
	OptionNumber  OptionType = "number"
	OptionBoolean OptionType = "boolean"
	OptionSelect  OptionType = "select"
)

// Definition 插件自己声明的元数据
type Definition struct {
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	Authors         []string             `json:"authors"`
	Tags            []string             `json:"tags"`
	Required        bool                 `json:"required"`
	RequiresRestart bool                 `json:"requiresRestart"`
	Dependencies    []string             `json:"dependencies"`
	Options         map[string]OptionDef `json:"options"`
}

type OptionDef struct {
	Type        OptionType `json:"type"`
	Description string     `json:"description"`
	Default     any        `json:"default"`
	// 只有 select 类型用
	Choices []string `json:"choices,omitempty"`
}

// validate 检查 val 是不是符合这个配置项的类型
func (o OptionDef) validate(val any) error {
	switch o.Type {
	case OptionString:
		if _, ok := val.(string); ok {
			return nil
		}
	case OptionNumber:
		switch val.(type) {
		case float64, float32, int, int64, int32, uint, uint64, uint32, json.Number:
			return nil
		}
	case OptionBoolean:
		if _, ok := val.(bool); ok {
			return nil
		}
	case OptionSelect:
		str, ok := val.(string)
		if !ok {
			break
		}
		for _, c := range o.Choices {
			if c == str {
				return nil
			}
		}
		return fmt.Errorf("%w, %q 不在可选项 %v 里面", ErrInvalidOption, str, o.Choices)
	default:
		return fmt.Errorf("%w, 未知类型 %q", ErrInvalidOption, o.Type)
	}
	return fmt.Errorf("%w, %v 不是 %s 类型", ErrInvalidOption, val, o.Type)
}

// Settings 持久化的用户设置
type Settings struct {
	Plugins map[string]PluginSettings `json:"plugins"`
	// 用户已经看到过的插件，不在里面的插件算新插件
	KnownPlugins []string `json:"knownPlugins"`
}

type PluginSettings struct {
	Enabled bool           `json:"enabled"`
	Options map[string]any `json:"options,omitempty"`
}

// clone 快照是共享的，修改之前必须复制
func (s Settings) clone() Settings {
	res := Settings{
		Plugins:      make(map[string]PluginSettings, len(s.Plugins)),
		KnownPlugins: append([]string(nil), s.KnownPlugins...),
	}
	for name, ps := range s.Plugins {
		opts := make(map[string]any, len(ps.Options))
		for k, v := range ps.Options {
			opts[k] = v
		}
		res.Plugins[name] = PluginSettings{Enabled: ps.Enabled, Options: opts}
	}
	return res
}

// View 设置面板上展示的一个插件
type View struct {
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Authors         []string     `json:"authors"`
	Tags            []string     `json:"tags"`
	Required        bool         `json:"required"`
	RequiresRestart bool         `json:"requiresRestart"`
	Dependencies    []string     `json:"dependencies"`
	Enabled         bool         `json:"enabled"`
	New             bool         `json:"new"`
	Options         []OptionView `json:"options"`
}

type OptionView struct {
	Name string `json:"name"`
	OptionDef
	// 用户没有设置过的时候就是默认值
	Value any `json:"value"`
}

// Result 一次修改的结果
type Result struct {
	// 状态真正发生了变化的插件
	Changed         []string `json:"changed"`
	RestartRequired bool     `json:"restartRequired"`
}

package plugins

import "errors"

var (
	ErrNotFound          = errors.New("plugins: 插件不存在")
	ErrRequired          = errors.New("plugins: 必需的插件不能禁用")
	ErrHasDependents     = errors.New("plugins: 还有启用中的插件依赖它")
	ErrInvalidOption     = errors.New("plugins: 非法的配置项")
	ErrInvalidFilter     = errors.New("plugins: 非法的过滤条件")
	ErrDuplicate         = errors.New("plugins: 插件名字重复")
	ErrUnknownDependency = errors.New("plugins: 依赖的插件不存在")
	ErrCycle             = errors.New("plugins: 插件之间存在循环依赖")
)

package plugins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"pluginstate/store"
)

type ManagerOption func(m *Manager)

// errUnchanged 设置没有变化，不需要提交
var errUnchanged = errors.New("plugins: 设置没有变化")

// Manager 插件列表和设置的读写入口，设置本身放在 store 里
type Manager struct {
	defs  map[string]Definition
	names []string
	// 反向依赖，key 是被依赖的插件
	dependents map[string][]string
	st         *store.Store[Settings]
	logger     logrus.FieldLogger
}

func ManagerWithLogger(l logrus.FieldLogger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager 校验插件之间的依赖关系，名字重复、依赖不存在、循环依赖都会返回 error
func NewManager(defs []Definition, st *store.Store[Settings], opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		defs:       make(map[string]Definition, len(defs)),
		names:      make([]string, 0, len(defs)),
		dependents: make(map[string][]string, len(defs)),
		st:         st,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, def := range defs {
		if _, ok := m.defs[def.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
		}
		for optName, od := range def.Options {
			if od.Default == nil {
				continue
			}
			if err := od.validate(od.Default); err != nil {
				return nil, fmt.Errorf("%s.%s 默认值: %w", def.Name, optName, err)
			}
		}
		m.defs[def.Name] = def
		m.names = append(m.names, def.Name)
	}
	sort.Strings(m.names)
	for _, name := range m.names {
		for _, dep := range m.defs[name].Dependencies {
			if _, ok := m.defs[dep]; !ok {
				return nil, fmt.Errorf("%w: %s 依赖 %s", ErrUnknownDependency, name, dep)
			}
			m.dependents[dep] = append(m.dependents[dep], name)
		}
	}
	if err := m.checkCycle(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) checkCycle() error {
	const (
		visiting = 1
		visited  = 2
	)
	state := make(map[string]int, len(m.names))
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: %v", ErrCycle, append(path, name))
		case visited:
			return nil
		}
		state[name] = visiting
		for _, dep := range m.defs[name].Dependencies {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = visited
		return nil
	}
	for _, name := range m.names {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// List 按名字排序
func (m *Manager) List(f Filter) []View {
	s := m.st.Get()
	known := knownSet(s)
	enabled := m.enabledSet(s)
	res := make([]View, 0, len(m.names))
	for _, name := range m.names {
		v := m.view(s, known, enabled, name)
		if f.Match(v) {
			res = append(res, v)
		}
	}
	return res
}

func (m *Manager) Get(name string) (View, error) {
	if _, ok := m.defs[name]; !ok {
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s := m.st.Get()
	return m.view(s, knownSet(s), m.enabledSet(s), name), nil
}

// Dependents 直接依赖 name 的插件，按名字排序
func (m *Manager) Dependents(name string) ([]string, error) {
	if _, ok := m.defs[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]string{}, m.dependents[name]...), nil
}

// Enable 连同所有依赖一起启用，依赖先于依赖它的插件
func (m *Manager) Enable(ctx context.Context, name string) (Result, error) {
	if _, ok := m.defs[name]; !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	var res Result
	err := m.st.Update(ctx, func(ctx context.Context, cur Settings) (Settings, error) {
		res = Result{Changed: []string{}}
		enabled := m.enabledSet(cur)
		next := cur.clone()
		for _, n := range m.withDependencies(name) {
			if enabled[n] {
				continue
			}
			ps := next.Plugins[n]
			ps.Enabled = true
			next.Plugins[n] = ps
			res.Changed = append(res.Changed, n)
			if m.defs[n].RequiresRestart {
				res.RestartRequired = true
			}
		}
		if len(res.Changed) == 0 {
			return cur, errUnchanged
		}
		return next, nil
	})
	if errors.Is(err, errUnchanged) {
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}
	m.logger.WithFields(logrus.Fields{
		"plugin":  name,
		"changed": res.Changed,
		"restart": res.RestartRequired,
	}).Info("plugins: 启用插件")
	return res, nil
}

// Disable 必需的插件和还有启用中的插件依赖的插件不能禁用
func (m *Manager) Disable(ctx context.Context, name string) (Result, error) {
	def, ok := m.defs[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if def.Required {
		return Result{}, fmt.Errorf("%w: %s", ErrRequired, name)
	}
	var res Result
	err := m.st.Update(ctx, func(ctx context.Context, cur Settings) (Settings, error) {
		res = Result{Changed: []string{}}
		enabled := m.enabledSet(cur)
		if !enabled[name] {
			return cur, errUnchanged
		}
		var using []string
		for _, d := range m.dependents[name] {
			if enabled[d] {
				using = append(using, d)
			}
		}
		if len(using) > 0 {
			return cur, fmt.Errorf("%w: %s 被 %v 依赖", ErrHasDependents, name, using)
		}
		next := cur.clone()
		ps := next.Plugins[name]
		ps.Enabled = false
		next.Plugins[name] = ps
		res.Changed = []string{name}
		res.RestartRequired = def.RequiresRestart
		return next, nil
	})
	if errors.Is(err, errUnchanged) {
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}
	m.logger.WithFields(logrus.Fields{
		"plugin":  name,
		"restart": res.RestartRequired,
	}).Info("plugins: 禁用插件")
	return res, nil
}

// Configure 校验之后合并进已有的配置
func (m *Manager) Configure(ctx context.Context, name string, opts map[string]any) (Result, error) {
	def, ok := m.defs[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	for k, v := range opts {
		od, ok := def.Options[k]
		if !ok {
			return Result{}, fmt.Errorf("%w, %s 没有配置项 %s", ErrInvalidOption, name, k)
		}
		if err := od.validate(v); err != nil {
			return Result{}, fmt.Errorf("%s.%s: %w", name, k, err)
		}
	}
	var res Result
	err := m.st.Update(ctx, func(ctx context.Context, cur Settings) (Settings, error) {
		next := cur.clone()
		ps := next.Plugins[name]
		if ps.Options == nil {
			ps.Options = make(map[string]any, len(opts))
		}
		for k, v := range opts {
			if n, ok := v.(json.Number); ok {
				f, err := n.Float64()
				if err != nil {
					return cur, fmt.Errorf("%w, %s.%s: %s", ErrInvalidOption, name, k, err.Error())
				}
				v = f
			}
			ps.Options[k] = v
		}
		next.Plugins[name] = ps
		res = Result{
			Changed:         []string{name},
			RestartRequired: def.RequiresRestart && m.enabledSet(next)[name],
		}
		return next, nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// MarkSeen 把当前所有插件记为已读，之后它们不再是新插件
func (m *Manager) MarkSeen(ctx context.Context) error {
	return m.st.Update(ctx, func(ctx context.Context, cur Settings) (Settings, error) {
		next := cur.clone()
		next.KnownPlugins = append([]string(nil), m.names...)
		return next, nil
	})
}

// withDependencies 后序遍历，依赖排在前面，name 在最后
func (m *Manager) withDependencies(name string) []string {
	seen := make(map[string]bool, 4)
	var res []string
	var visit func(n string)
	visit = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		deps := append([]string(nil), m.defs[n].Dependencies...)
		sort.Strings(deps)
		for _, d := range deps {
			visit(d)
		}
		res = append(res, n)
	}
	visit(name)
	return res
}

// enabledSet 实际启用的插件：必需的和手动启用的，再加上它们的全部依赖
func (m *Manager) enabledSet(s Settings) map[string]bool {
	res := make(map[string]bool, len(m.names))
	for _, name := range m.names {
		if res[name] || !(m.defs[name].Required || s.Plugins[name].Enabled) {
			continue
		}
		for _, n := range m.withDependencies(name) {
			res[n] = true
		}
	}
	return res
}

func (m *Manager) view(s Settings, known, enabled map[string]bool, name string) View {
	def := m.defs[name]
	ps := s.Plugins[name]
	v := View{
		Name:            def.Name,
		Description:     def.Description,
		Authors:         def.Authors,
		Tags:            def.Tags,
		Required:        def.Required,
		RequiresRestart: def.RequiresRestart,
		Dependencies:    def.Dependencies,
		Enabled:         enabled[name],
		New:             !known[name],
		Options:         make([]OptionView, 0, len(def.Options)),
	}
	for optName, od := range def.Options {
		val, ok := ps.Options[optName]
		if !ok {
			val = od.Default
		}
		v.Options = append(v.Options, OptionView{Name: optName, OptionDef: od, Value: val})
	}
	sort.Slice(v.Options, func(i, j int) bool {
		return v.Options[i].Name < v.Options[j].Name
	})
	return v
}

func knownSet(s Settings) map[string]bool {
	res := make(map[string]bool, len(s.KnownPlugins))
	for _, n := range s.KnownPlugins {
		res[n] = true
	}
	return res
}

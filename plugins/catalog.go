package plugins

import (
	"encoding/json"
	"fmt"
)

// ParseCatalog 解析 JSON 格式的插件清单，顶层是 Definition 数组
func ParseCatalog(data []byte) ([]Definition, error) {
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("plugins: 解析插件清单失败, %w", err)
	}
	return defs, nil
}

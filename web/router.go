package web

import (
	"fmt"
	"strings"
)

// router 每个 HTTP 方法一棵路由树
type router struct {
	trees map[string]*node
}

func newRouter() router {
	return router{
		trees: map[string]*node{},
	}
}

// addRoute path 必须以 / 开头，不能以 / 结尾，中间不能有连续的 /
// 同一个位置不能同时注册路径参数和通配符
func (r *router) addRoute(method string, path string, handleFunc HandleFunc) {
	if path == "" {
		panic("web: 路径不能为空")
	}
	if path[0] != '/' {
		panic("web: 路径必须以 / 开头")
	}
	if path != "/" && path[len(path)-1] == '/' {
		panic("web: 路径不能以 / 结尾")
	}
	root, ok := r.trees[method]
	if !ok {
		root = &node{path: "/"}
		r.trees[method] = root
	}
	if path == "/" {
		if root.handler != nil {
			panic("web: 路由冲突, 重复注册 [/]")
		}
		root.handler = handleFunc
		root.route = "/"
		return
	}
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" {
			panic(fmt.Sprintf("web: 非法路由 [%s], 不能有连续的 /", path))
		}
		root = root.childOrCreate(seg)
	}
	if root.handler != nil {
		panic(fmt.Sprintf("web: 路由冲突, 重复注册 [%s]", path))
	}
	root.handler = handleFunc
	root.route = path
}

// findRoute 命中的节点可能没有 handler，由调用者判断
func (r *router) findRoute(method string, path string) (*matchInfo, bool) {
	root, ok := r.trees[method]
	if !ok {
		return nil, false
	}
	if path == "/" {
		return &matchInfo{n: root}, true
	}
	var pathParams map[string]string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		child, paramChild, found := root.childOf(seg)
		if !found {
			return nil, false
		}
		if paramChild {
			if pathParams == nil {
				pathParams = make(map[string]string, 2)
			}
			// child.path 是 :name 的形式
			pathParams[child.path[1:]] = seg
		}
		root = child
	}
	return &matchInfo{n: root, pathParams: pathParams}, true
}

type node struct {
	// 完整的注册路由，只有注册过 handler 的节点才有
	route string
	path  string

	// 静态匹配
	children map[string]*node
	// 通配符匹配
	starChild *node
	// 路径参数匹配
	paramChild *node

	handler HandleFunc
}

// childOf 优先静态匹配，其次路径参数，最后通配符
// 返回子节点、是否是路径参数、是否命中
func (n *node) childOf(path string) (*node, bool, bool) {
	if child, ok := n.children[path]; ok {
		return child, false, true
	}
	if n.paramChild != nil {
		return n.paramChild, true, true
	}
	return n.starChild, false, n.starChild != nil
}

func (n *node) childOrCreate(seg string) *node {
	if seg[0] == ':' {
		if n.starChild != nil {
			panic("web: 不允许同时注册路径参数和通配符匹配, 已有通配符匹配")
		}
		if n.paramChild != nil {
			if n.paramChild.path != seg {
				panic(fmt.Sprintf("web: 路由冲突, 已有路径参数 %s, 新注册 %s", n.paramChild.path, seg))
			}
		} else {
			n.paramChild = &node{path: seg}
		}
		return n.paramChild
	}
	if seg == "*" {
		if n.paramChild != nil {
			panic("web: 不允许同时注册路径参数和通配符匹配, 已有路径参数匹配")
		}
		if n.starChild == nil {
			n.starChild = &node{path: seg}
		}
		return n.starChild
	}
	if n.children == nil {
		n.children = map[string]*node{}
	}
	res, ok := n.children[seg]
	if !ok {
		res = &node{path: seg}
		n.children[seg] = res
	}
	return res
}

type matchInfo struct {
	n          *node
	pathParams map[string]string
}

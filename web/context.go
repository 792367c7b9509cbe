package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

var errKeyNotFound = errors.New("web: key 不存在")

type Context struct {
	Req *http.Request

	// Resp 直接写 Resp 会绕开 RespData 和 RespStatusCode，部分 middleware 就无法运作
	Resp http.ResponseWriter

	// 给 middleware 读写用，最后由 server 刷新到 Resp
	RespData       []byte
	RespStatusCode int

	PathParams map[string]string

	// query 的缓存
	queryValues url.Values

	// 命中的路由，例如 /plugins/:name
	MatchRoute string

	UserValues map[string]any
}

// RespJSON 只是设置 RespData 和 RespStatusCode，真正的写入在 server 里
func (c *Context) RespJSON(status int, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.Resp.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.RespData = data
	c.RespStatusCode = status
	return nil
}

func (c *Context) RespJSONOK(val any) error {
	return c.RespJSON(http.StatusOK, val)
}

// BindJSON 数字解析成 json.Number，不会丢精度，也能区分整数和小数
func (c *Context) BindJSON(val any) error {
	if val == nil {
		return errors.New("web: 输入为 nil")
	}
	if c.Req.Body == nil {
		return errors.New("web: body 为 nil")
	}
	decoder := json.NewDecoder(c.Req.Body)
	decoder.UseNumber()
	return decoder.Decode(val)
}

// QueryValue 区分不出来是没有这个 key 还是值就是空字符串的时候，看 StringValue 的 err
func (c *Context) QueryValue(key string) StringValue {
	if c.queryValues == nil {
		c.queryValues = c.Req.URL.Query()
	}
	vals, ok := c.queryValues[key]
	if !ok {
		return StringValue{err: errKeyNotFound}
	}
	return StringValue{val: vals[0]}
}

func (c *Context) PathValue(key string) StringValue {
	val, ok := c.PathParams[key]
	if !ok {
		return StringValue{err: errKeyNotFound}
	}
	return StringValue{val: val}
}

type StringValue struct {
	val string
	err error
}

func (s StringValue) String() (string, error) {
	return s.val, s.err
}

// StringOr 没有值的时候返回 def
func (s StringValue) StringOr(def string) string {
	if s.err != nil {
		return def
	}
	return s.val
}

func (s StringValue) AsInt64() (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return strconv.ParseInt(s.val, 10, 64)
}

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Codec 快照的序列化方式
type Codec interface {
	Name() string
	Marshal(val any) ([]byte, error)
	Unmarshal(data []byte, val any) error
}

type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(val any) ([]byte, error) {
	return json.Marshal(val)
}

func (JSONCodec) Unmarshal(data []byte, val any) error {
	return json.Unmarshal(data, val)
}

// maxSafeInt float64 能精确表示的最大整数
const maxSafeInt = 1 << 53

var errUnsafeInt = errors.New("store: 整数超出 float64 的精度范围")

// ProtoCodec 先转成 JSON 的结构，再放进 structpb.Value 用 protobuf 编码
// 适合和其它语言的服务共享快照
// structpb 里所有数字都是 float64，绝对值超过 2^53 的整数会返回 error，不会悄悄丢精度
type ProtoCodec struct{}

func (ProtoCodec) Name() string {
	return "proto"
}

func (ProtoCodec) Marshal(val any) ([]byte, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err = dec.Decode(&raw); err != nil {
		return nil, err
	}
	raw, err = toFloat(raw)
	if err != nil {
		return nil, err
	}
	pv, err := structpb.NewValue(raw)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pv)
}

func (ProtoCodec) Unmarshal(data []byte, val any) error {
	pv := &structpb.Value{}
	if err := proto.Unmarshal(data, pv); err != nil {
		return err
	}
	js, err := protojson.Marshal(pv)
	if err != nil {
		return err
	}
	return json.Unmarshal(js, val)
}

// toFloat 把 json.Number 换成 float64，精度会丢的整数直接报错
func toFloat(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			i, err := strconv.ParseInt(val.String(), 10, 64)
			if err != nil || i > maxSafeInt || i < -maxSafeInt {
				return nil, fmt.Errorf("%w: %s", errUnsafeInt, val.String())
			}
		}
		return val.Float64()
	case map[string]any:
		for k, item := range val {
			f, err := toFloat(item)
			if err != nil {
				return nil, err
			}
			val[k] = f
		}
		return val, nil
	case []any:
		for i, item := range val {
			f, err := toFloat(item)
			if err != nil {
				return nil, err
			}
			val[i] = f
		}
		return val, nil
	default:
		return v, nil
	}
}

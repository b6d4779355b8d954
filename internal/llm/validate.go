package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// 编译后的 schema 按名称缓存
var compiled sync.Map

// checkOutput 截断的结构化输出无法解析，直接按 truncated 返回
func checkOutput(schema *Schema, resp *Response) error {
	if schema == nil {
		return nil
	}
	if resp.Truncated {
		return &Error{Kind: KindTruncated, Err: fmt.Errorf("output hit max tokens (%d out)", resp.Usage.OutputTokens)}
	}
	return Validate(schema, resp.Content)
}

// Validate 校验 content 是否符合 schema
func Validate(schema *Schema, content string) error {
	var doc any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &doc); err != nil {
		return &Error{Kind: KindInvalidOutput, Err: fmt.Errorf("invalid json: %w", err)}
	}
	sch, err := compile(schema)
	if err != nil {
		return &Error{Kind: KindConfig, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &Error{Kind: KindInvalidOutput, Err: err}
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(schema.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	// AddResource 需要 json 解码得到的值，map[string]any 里的 []string 不被接受
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", schema.Name, err)
	}
	var def any
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schema.Name, err)
	}

	url := "mem://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	compiled.Store(schema.Name, sch)
	return sch, nil
}

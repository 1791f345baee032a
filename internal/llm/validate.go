package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one validator per Schema.Name.
var compiled = struct {
	sync.Mutex
	byName map[string]*jsonschema.Schema
}{byName: make(map[string]*jsonschema.Schema)}

// conform returns the JSON document inside a structured answer after
// checking it against schema. Some models wrap JSON in a Markdown code
// fence; the fence is dropped. Failures are *ErrInvalidResponse carrying
// the raw answer.
func conform(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	invalid := func(err error) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: %w", schema.Name, err)}
	}

	validator, err := compile(schema)
	if err != nil {
		return nil, invalid(fmt.Errorf("compile schema: %w", err))
	}

	doc := unfence(raw)
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, invalid(fmt.Errorf("answer is not JSON: %w", err))
	}
	if err := validator.Validate(v); err != nil {
		return nil, invalid(err)
	}
	return doc, nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	compiled.Lock()
	defer compiled.Unlock()

	if v, ok := compiled.byName[schema.Name]; ok {
		return v, nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, err
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.byName[schema.Name] = v
	return v, nil
}

// unfence strips surrounding whitespace and a ```json ... ``` fence.
func unfence(raw []byte) json.RawMessage {
	s := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(s, []byte("```")) {
		return s
	}
	s = s[3:]
	if i := bytes.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = bytes.TrimPrefix(s, []byte("json"))
	}
	s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
	return bytes.TrimSpace(s)
}

package models

import "encoding/json"

// ToolCall is a structured "invoke tool X with arguments" request carried by an assistant reply.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"args"`
}

// StringArg returns the named argument when it is a non-empty string.
func (t *ToolCall) StringArg(name string) (string, bool) {
	if t == nil || t.Arguments == nil {
		return "", false
	}
	v, ok := t.Arguments[name].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (t ToolCall) toMap() map[string]interface{} {
	args := make(map[string]interface{}, len(t.Arguments))
	for k, v := range t.Arguments {
		args[k] = v
	}
	return map[string]interface{}{
		"id":   t.ID,
		"name": t.Name,
		"args": args,
	}
}

// toolCallFromValue accepts the stored shape ({id,name,args}), the legacy function-call shape
// ({name,arguments}) and the provider tool-call shape ({id,function:{name,arguments}}).
// Arguments may be a map or a JSON-encoded string.
func toolCallFromValue(v interface{}) (ToolCall, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ToolCall{}, false
	}
	id, _ := m["id"].(string)
	if fn, ok := m["function"].(map[string]interface{}); ok {
		m = fn
	}
	name, _ := m["name"].(string)
	if name == "" {
		return ToolCall{}, false
	}
	args := argumentsFromValue(m["args"])
	if args == nil {
		args = argumentsFromValue(m["arguments"])
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return ToolCall{ID: id, Name: name, Arguments: args}, true
}

func argumentsFromValue(v interface{}) map[string]interface{} {
	switch args := v.(type) {
	case map[string]interface{}:
		return args
	case string:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(args), &parsed); err == nil {
			return parsed
		}
	}
	return nil
}

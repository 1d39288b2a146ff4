package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexText is free text the model sometimes returns as a nested object.
// Objects are kept as compact JSON so no content is lost.
type FlexText string

// UnmarshalJSON accepts a string or any other JSON value
func (f *FlexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexText(s)
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	*f = FlexText(buf.String())
	return nil
}

// StringList is a list of skills or keywords. Object elements such as
// {"missing_skill": "Docker", "priority": "high"} are reduced to their name.
type StringList []string

// nameKeys are tried in order when an element is an object
var nameKeys = []string{"name", "skill", "missing_skill", "keyword", "category"}

// UnmarshalJSON accepts strings and objects; anything else is skipped
func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, el := range raw {
		var s string
		if err := json.Unmarshal(el, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(el, &obj); err != nil {
			continue
		}
		if name := objectName(obj); name != "" {
			out = append(out, name)
			continue
		}
		// {"category": "...", "skills": ["a", "b"]}
		if skills, ok := obj["skills"].([]any); ok {
			for _, s := range skills {
				if str, ok := s.(string); ok && strings.TrimSpace(str) != "" {
					out = append(out, strings.TrimSpace(str))
				}
			}
		}
	}
	*l = out
	return nil
}

func objectName(obj map[string]any) string {
	if _, grouped := obj["skills"]; grouped {
		return ""
	}
	for _, k := range nameKeys {
		if v, ok := obj[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

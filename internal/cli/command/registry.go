package command

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service: "session",
			Action:  "show",
			Method:  "GET",
			Path:    "/api/leetcode/session",
			Summary: "show the stored LeetCode cookies",
		},
		{
			Service: "session",
			Action:  "set",
			Method:  "POST",
			Path:    "/api/leetcode/session",
			Summary: "store LEETCODE_SESSION and csrftoken",
			Fields: []Field{
				{Name: "leetcode_session", Aliases: []string{"session"}, Prompt: "LEETCODE_SESSION", Type: FieldString, Required: true},
				{Name: "csrf_token", Aliases: []string{"csrf", "csrftoken"}, Prompt: "csrftoken", Type: FieldString, Required: true},
			},
		},
		{
			Service: "session",
			Action:  "clear",
			Method:  "DELETE",
			Path:    "/api/leetcode/session",
			Summary: "drop the stored cookies",
		},
		{
			Service: "potd",
			Action:  "get",
			Method:  "GET",
			Path:    "/api/potd",
			Summary: "show today's daily challenge",
		},
		{
			Service: "refs",
			Action:  "get",
			Method:  "GET",
			Path:    "/api/references",
			Summary: "list editorial and community references",
			Fields: []Field{
				{Name: "slug", Prompt: "slug", Type: FieldString, Required: true, Query: true},
				{Name: "lang", Aliases: []string{"language"}, Prompt: "lang", Type: FieldString, Query: true},
			},
		},
		{
			Service: "history",
			Action:  "list",
			Method:  "GET",
			Path:    "/api/leetcode/submissions",
			Summary: "list recent submissions for a problem",
			Fields: []Field{
				{Name: "slug", Prompt: "slug", Type: FieldString, Required: true, Query: true},
				{Name: "limit", Prompt: "limit", Type: FieldInt, Query: true},
			},
		},
		{
			Service: "submit",
			Action:  "run",
			Method:  "POST",
			Path:    "/api/leetcode/submit",
			Summary: "submit code and wait for the verdict",
			Fields: []Field{
				{Name: "slug", Prompt: "slug", Type: FieldString, Required: true},
				{Name: "language", Aliases: []string{"lang"}, Prompt: "language", Type: FieldString, Required: true},
				{Name: "code", Prompt: "code", Type: FieldString, Required: true},
				{Name: "source_file", Aliases: []string{"file"}, Prompt: "source_file", Type: FieldFile, Fills: "code"},
			},
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		result[cmd.Key()] = cmd
	}
	return result
}

// Keys returns the registry keys sorted for help output.
func Keys(commands map[string]Command) []string {
	keys := make([]string, 0, len(commands))
	for key := range commands {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// BuildRequest maps params onto cmd's query and JSON body.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)

	query := url.Values{}
	body := map[string]interface{}{}
	for _, field := range cmd.Fields {
		value, err := fieldValue(field, params)
		if err != nil {
			return RequestSpec{}, err
		}
		if value == nil {
			if field.Required {
				return RequestSpec{}, fmt.Errorf("%s is required", field.Name)
			}
			continue
		}
		if field.Query {
			query.Set(field.Name, fmt.Sprint(value))
			continue
		}
		body[field.Name] = value
	}

	path := cmd.Path
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var raw []byte
	if cmd.Method != "GET" && cmd.Method != "DELETE" && len(body) > 0 {
		data, err := json.Marshal(body)
		if err != nil {
			return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
		}
		raw = data
	}

	return RequestSpec{
		Method:  cmd.Method,
		Path:    path,
		Headers: map[string]string{},
		Body:    raw,
	}, nil
}

// fieldValue returns nil when the field is absent. File fields are consumed
// by the field they fill and never sent.
func fieldValue(field Field, params Params) (interface{}, error) {
	if field.Type == FieldFile {
		return nil, nil
	}
	value := params.Get(field.Name)
	if value == "" {
		return nil, nil
	}
	switch field.Type {
	case FieldInt:
		n, err := ParseInt(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", field.Name, err)
		}
		return n, nil
	default:
		return value, nil
	}
}

// ResolveFiles loads file fields into the fields they fill unless those were
// given inline.
func ResolveFiles(cmd Command, params Params) error {
	params.Canonicalize(cmd.Fields)
	for _, field := range cmd.Fields {
		if field.Type != FieldFile || field.Fills == "" {
			continue
		}
		path := strings.TrimSpace(params.Get(field.Name))
		if path == "" {
			continue
		}
		target := field.Fills
		if params.Get(target) != "" {
			continue
		}
		data, err := ReadFile(path)
		if err != nil {
			return err
		}
		params.Set(target, data)
	}
	return nil
}

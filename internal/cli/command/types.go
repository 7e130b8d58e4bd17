package command

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	// FieldFile is a path whose content is loaded into the field named by Fills.
	FieldFile
)

// Field is one key=value input of a command.
type Field struct {
	Name     string
	Aliases  []string
	Prompt   string
	Type     FieldType
	Required bool
	// Query sends the value in the URL query instead of the JSON body.
	Query bool
	Fills string
}

// Command binds "service action" to an API route.
type Command struct {
	Service string
	Action  string
	Method  string
	Path    string
	Summary string
	Fields  []Field
}

func (c Command) Key() string {
	return c.Service + " " + c.Action
}

// RequestSpec is a request ready for httpclient.Client.Do.
type RequestSpec struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Params maps lower-cased field names to raw values.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

// Canonicalize renames alias keys to their field names. A value given under
// the field name wins over one given under an alias.
func (p Params) Canonicalize(fields []Field) {
	for _, field := range fields {
		name := strings.ToLower(field.Name)
		for _, alias := range field.Aliases {
			alias = strings.ToLower(alias)
			value, ok := p[alias]
			if !ok {
				continue
			}
			delete(p, alias)
			if _, set := p[name]; !set {
				p[name] = value
			}
		}
	}
}

// ParseArgs turns key=value tokens into Params. Values may contain '='.
func ParseArgs(tokens []string) (Params, error) {
	params := make(Params, len(tokens))
	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q, want key=value", token)
		}
		params.Set(key, value)
	}
	return params, nil
}

func ParseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

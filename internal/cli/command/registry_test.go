package command_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lcbridge/internal/cli/command"
)

func TestRegistryKeys(t *testing.T) {
	want := []string{"history list", "potd get", "refs get", "session clear", "session set", "session show", "submit run"}
	got := command.Keys(command.Registry())
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Keys = %v", got)
	}
}

func TestBuildRequestQueryCommands(t *testing.T) {
	commands := command.Registry()

	req, err := command.BuildRequest(commands["refs get"], command.Params{"slug": "two-sum", "language": "python"})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Method != "GET" || req.Path != "/api/references?lang=python&slug=two-sum" || req.Body != nil {
		t.Fatalf("unexpected request: %+v", req)
	}

	req, err = command.BuildRequest(commands["history list"], command.Params{"slug": "two-sum", "limit": "5"})
	if err != nil || req.Path != "/api/leetcode/submissions?limit=5&slug=two-sum" {
		t.Fatalf("history request = %+v, %v", req, err)
	}

	if _, err := command.BuildRequest(commands["history list"], command.Params{"slug": "two-sum", "limit": "many"}); err == nil {
		t.Fatal("expected invalid limit error")
	}
	if _, err := command.BuildRequest(commands["refs get"], command.Params{}); err == nil {
		t.Fatal("expected missing slug error")
	}
}

func TestBuildRequestBodyCommands(t *testing.T) {
	commands := command.Registry()

	req, err := command.BuildRequest(commands["session set"], command.Params{"session": "abc", "csrf": "xyz"})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if req.Method != "POST" || body["leetcode_session"] != "abc" || body["csrf_token"] != "xyz" {
		t.Fatalf("unexpected session request: %+v %v", req, body)
	}

	req, err = command.BuildRequest(commands["session clear"], command.Params{})
	if err != nil || req.Method != "DELETE" || req.Body != nil {
		t.Fatalf("clear request = %+v, %v", req, err)
	}
}

func TestResolveFilesFillsCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.py")
	if err := os.WriteFile(path, []byte("class Solution:\n    pass\n"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	cmd := command.Registry()["submit run"]

	params := command.Params{"slug": "two-sum", "lang": "python3", "file": path}
	if err := command.ResolveFiles(cmd, params); err != nil {
		t.Fatalf("ResolveFiles: %v", err)
	}
	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	var body map[string]string
	_ = json.Unmarshal(req.Body, &body)
	if body["code"] != "class Solution:\n    pass\n" || body["language"] != "python3" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["source_file"]; ok {
		t.Fatal("source_file must not be sent")
	}

	inline := command.Params{"code": "print(1)", "source_file": path}
	if err := command.ResolveFiles(cmd, inline); err != nil || inline.Get("code") != "print(1)" {
		t.Fatalf("inline code replaced: %v %v", inline, err)
	}

	missing := command.Params{"source_file": filepath.Join(t.TempDir(), "nope.py")}
	if err := command.ResolveFiles(cmd, missing); err == nil {
		t.Fatal("expected read error")
	}
}

func TestParseArgs(t *testing.T) {
	params, err := command.ParseArgs([]string{"Slug=two-sum", "code=a=b"})
	if err != nil || params.Get("slug") != "two-sum" || params.Get("code") != "a=b" {
		t.Fatalf("ParseArgs = %v, %v", params, err)
	}
	if _, err := command.ParseArgs([]string{"novalue"}); err == nil {
		t.Fatal("expected invalid param error")
	}
}

func TestCanonicalizePrefersFieldName(t *testing.T) {
	cmd := command.Registry()["submit run"]
	params := command.Params{"language": "golang", "lang": "java"}
	params.Canonicalize(cmd.Fields)
	if params.Get("language") != "golang" || params.Get("lang") != "" {
		t.Fatalf("params = %v", params)
	}
}

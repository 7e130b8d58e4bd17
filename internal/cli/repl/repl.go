package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/cli/command"
	"lcbridge/internal/cli/state"
	"lcbridge/internal/common/httpclient"
	pkgerrors "lcbridge/pkg/errors"

	"github.com/google/shlex"
)

// errExit ends the loop.
var errExit = errors.New("exit")

// Session holds REPL state.
type Session struct {
	client     *httpclient.Client
	commands   map[string]command.Command
	prefs      *state.Preferences
	statePath  string
	prettyJSON bool
	input      *bufio.Reader
	output     *bufio.Writer
}

func New(client *httpclient.Client, commands map[string]command.Command, prefs *state.Preferences, statePath string, prettyJSON bool, in io.Reader, out io.Writer) *Session {
	return &Session{
		client:     client,
		commands:   commands,
		prefs:      prefs,
		statePath:  statePath,
		prettyJSON: prettyJSON,
		input:      bufio.NewReader(in),
		output:     bufio.NewWriter(out),
	}
}

// Run reads commands until exit or end of input.
func (s *Session) Run(ctx context.Context) {
	for {
		_, _ = s.output.WriteString("lcbridge> ")
		_ = s.output.Flush()
		line, err := s.input.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.printLine("read input failed: %v", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				s.printLine("bye")
				return
			}
			s.printLine("error: %v", err)
		}
	}
}

// Exec runs one line, either a system command or "<service> <action> key=value ...".
func (s *Session) Exec(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	if handled, err := s.handleSystemCommand(tokens); handled {
		return err
	}
	return s.handleCommand(ctx, tokens)
}

func (s *Session) handleSystemCommand(tokens []string) (bool, error) {
	switch tokens[0] {
	case "exit", "quit":
		return true, errExit
	case "help":
		s.printHelp()
		return true, nil
	case "set":
		s.handleSet(tokens[1:])
		return true, nil
	case "show":
		s.handleShow(tokens[1:])
		return true, nil
	}
	return false, nil
}

func (s *Session) handleSet(args []string) {
	if len(args) < 2 {
		s.printLine("usage: set base|timeout|lang <value>")
		return
	}
	switch args[0] {
	case "base":
		s.client.SetBaseURL(args[1])
		s.printLine("base set to %s", args[1])
	case "timeout":
		dur, err := time.ParseDuration(args[1])
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.client.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	case "lang":
		s.prefs.Language = args[1]
		s.savePrefs()
		s.printLine("default language set to %s", args[1])
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args []string) {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	switch topic {
	case "config":
		s.printLine("base: %s", s.client.BaseURL())
		s.printLine("statePath: %s", s.statePath)
	case "lang":
		if s.prefs.Language == "" {
			s.printLine("lang: <empty>")
			return
		}
		s.printLine("lang: %s", s.prefs.Language)
	default:
		s.printLine("usage: show config|lang")
	}
}

func (s *Session) handleCommand(ctx context.Context, tokens []string) error {
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	cmd, ok := s.commands[tokens[0]+" "+tokens[1]]
	if !ok {
		return fmt.Errorf("unknown command: %s %s", tokens[0], tokens[1])
	}
	params, err := command.ParseArgs(tokens[2:])
	if err != nil {
		return err
	}

	if err := command.ResolveFiles(cmd, params); err != nil {
		return err
	}
	s.applyPreferences(cmd, params)
	if err := s.promptMissing(cmd, params); err != nil {
		return err
	}
	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(ctx, req.Method, req.Path, req.Headers, req.Body)
	if err != nil {
		return err
	}
	s.renderResponse(cmd, resp)
	s.rememberInputs(cmd, params, resp)
	return nil
}

func (s *Session) applyPreferences(cmd command.Command, params command.Params) {
	for _, field := range cmd.Fields {
		if (field.Name == "language" || field.Name == "lang") && params.Get(field.Name) == "" && s.prefs.Language != "" {
			params.Set(field.Name, s.prefs.Language)
		}
	}
}

func (s *Session) promptMissing(cmd command.Command, params command.Params) error {
	for _, field := range cmd.Fields {
		if !field.Required || params.Get(field.Name) != "" {
			continue
		}
		def := ""
		if field.Name == "slug" {
			def = s.prefs.LastSlug
		}
		value, err := s.promptValue(field.Prompt, def)
		if err != nil {
			return err
		}
		params.Set(field.Name, value)
	}
	return nil
}

func (s *Session) promptValue(prompt, def string) (string, error) {
	if def != "" {
		s.printLine("%s [%s]:", prompt, def)
	} else {
		s.printLine("%s:", prompt)
	}
	line, err := s.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	value := strings.TrimSpace(line)
	if value == "" {
		value = def
	}
	return value, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(body []byte) (envelope, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return env, false
	}
	return env, true
}

func (s *Session) renderResponse(cmd command.Command, resp httpclient.ResponseInfo) {
	s.printLine("HTTP %d (%s)", resp.StatusCode, resp.Duration)
	if len(resp.Body) == 0 {
		return
	}
	if cmd.Key() == "submit run" && s.renderSubmission(resp.Body) {
		return
	}
	if s.prettyJSON {
		var raw interface{}
		if err := json.Unmarshal(resp.Body, &raw); err == nil {
			formatted, _ := json.MarshalIndent(raw, "", "  ")
			s.printLine("%s", string(formatted))
			return
		}
	}
	s.printLine("%s", string(resp.Body))
}

// renderSubmission prints the step log and verdict. It returns false when the
// body is not a submission outcome.
func (s *Session) renderSubmission(body []byte) bool {
	env, ok := decodeEnvelope(body)
	if !ok || env.Code != int(pkgerrors.Success) {
		return false
	}
	var outcome model.SubmissionOutcome
	if err := json.Unmarshal(env.Data, &outcome); err != nil || len(outcome.Steps) == 0 {
		return false
	}
	for _, step := range outcome.Steps {
		if step.Detail == "" {
			s.printLine("[%s] %s", step.Status, step.Step)
			continue
		}
		s.printLine("[%s] %s: %s", step.Status, step.Step, step.Detail)
	}
	if result := outcome.Result; result != nil {
		s.printLine("verdict: %s", deref(result.StatusMsg, "Unknown"))
		if result.TotalCorrect != nil && result.TotalTestcases != nil {
			s.printLine("testcases: %s/%s", *result.TotalCorrect, *result.TotalTestcases)
		}
		if result.Runtime != nil || result.Memory != nil {
			s.printLine("runtime: %s  memory: %s", deref(result.Runtime, "-"), deref(result.Memory, "-"))
		}
		if result.CompileError != nil {
			s.printLine("compile error: %s", *result.CompileError)
		}
		if result.RuntimeError != nil {
			s.printLine("runtime error: %s", *result.RuntimeError)
		}
	}
	if outcome.Error != "" {
		s.printLine("error: %s", outcome.Error)
	}
	return true
}

func deref(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func (s *Session) rememberInputs(cmd command.Command, params command.Params, resp httpclient.ResponseInfo) {
	if !resp.OK() {
		return
	}
	changed := false
	if slug := params.Get("slug"); slug != "" && slug != s.prefs.LastSlug {
		s.prefs.LastSlug = slug
		changed = true
	}
	if cmd.Key() == "submit run" {
		if lang := params.Get("language"); lang != "" && lang != s.prefs.Language {
			s.prefs.Language = lang
			changed = true
		}
	}
	if changed {
		s.savePrefs()
	}
}

func (s *Session) savePrefs() {
	if s.statePath == "" {
		return
	}
	if err := state.Save(s.statePath, *s.prefs); err != nil {
		s.printLine("save cli state failed: %v", err)
	}
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set base|timeout|lang | show config|lang")
	s.printLine("commands:")
	for _, key := range command.Keys(s.commands) {
		s.printLine("  %-14s %s", key, s.commands[key].Summary)
	}
	s.printLine("examples:")
	s.printLine("  session set session=<LEETCODE_SESSION> csrf=<csrftoken>")
	s.printLine("  refs get slug=two-sum lang=python")
	s.printLine("  submit run slug=two-sum lang=python3 file=./solution.py")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.output, format+"\n", args...)
	_ = s.output.Flush()
}

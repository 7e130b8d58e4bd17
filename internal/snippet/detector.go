package snippet

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"lcbridge/internal/language"
)

// Detector decides whether an untagged code block looks like one language.
// Detect receives the trimmed snippet and its lowercased form.
type Detector interface {
	Name() string
	Detect(snippet, lower string) bool
}

// DetectorFunc adapts a plain function into a named Detector.
type DetectorFunc struct {
	name string
	fn   func(snippet, lower string) bool
}

// NewDetector returns a Detector backed by fn.
func NewDetector(name string, fn func(snippet, lower string) bool) DetectorFunc {
	return DetectorFunc{name: name, fn: fn}
}

func (d DetectorFunc) Name() string { return d.name }

func (d DetectorFunc) Detect(snippet, lower string) bool { return d.fn(snippet, lower) }

// Registry maps normalized aliases to detectors. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{detectors: make(map[string]Detector)}
}

// Register binds detector to every given alias, replacing earlier bindings.
func (r *Registry) Register(detector Detector, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alias := range aliases {
		if key := language.Normalize(alias); key != "" {
			r.detectors[key] = detector
		}
	}
}

// Lookup returns the detector registered for a normalized alias.
func (r *Registry) Lookup(alias string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	detector, ok := r.detectors[alias]
	return detector, ok
}

// Aliases lists every alias with a registered detector.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.detectors))
	for alias := range r.detectors {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether any alias has a detector accepting snippet.
func (r *Registry) Matches(snippet string, aliases []string) bool {
	trimmed := strings.TrimSpace(strings.ReplaceAll(snippet, "\r\n", "\n"))
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, alias := range aliases {
		detector, ok := r.Lookup(alias)
		if ok && detector.Detect(trimmed, lower) {
			return true
		}
	}
	return false
}

var templateKeyword = regexp.MustCompile(`\btemplate\b`)

var (
	PythonDetector = NewDetector("python", func(snippet, lower string) bool {
		return strings.Contains(lower, "def ") || strings.HasPrefix(lower, "class ") || strings.Contains(snippet, ":\n")
	})
	JavaDetector = NewDetector("java", func(snippet, lower string) bool {
		return strings.Contains(snippet, "class ") && strings.Contains(snippet, ";") &&
			(strings.Contains(lower, "public ") || strings.Contains(lower, "private "))
	})
	CppDetector = NewDetector("cpp", func(snippet, lower string) bool {
		return strings.Contains(lower, "#include") || strings.Contains(snippet, "std::") || templateKeyword.MatchString(lower)
	})
	CDetector = NewDetector("c", func(_, lower string) bool {
		return strings.Contains(lower, "#include") || strings.Contains(lower, "int main")
	})
	CSharpDetector = NewDetector("csharp", func(snippet, lower string) bool {
		return strings.Contains(snippet, "using System") || strings.Contains(lower, "namespace ") || strings.Contains(lower, "public class")
	})
	JavaScriptDetector = NewDetector("javascript", func(snippet, lower string) bool {
		return strings.Contains(lower, "function ") ||
			(strings.Contains(lower, "const ") && strings.Contains(snippet, "=>")) ||
			strings.Contains(lower, "module.exports")
	})
	TypeScriptDetector = NewDetector("typescript", func(snippet, lower string) bool {
		return strings.Contains(lower, "interface ") || strings.Contains(lower, "type ") ||
			(strings.Contains(lower, "const ") && strings.Contains(snippet, "=>"))
	})
	GoDetector = NewDetector("golang", func(_, lower string) bool {
		return strings.HasPrefix(lower, "package ") || strings.Contains(lower, "func ")
	})
	RustDetector = NewDetector("rust", func(_, lower string) bool {
		return strings.Contains(lower, "fn ") && strings.Contains(lower, "let ")
	})
	KotlinDetector = NewDetector("kotlin", func(_, lower string) bool {
		return strings.Contains(lower, "fun ") || strings.Contains(lower, "val ")
	})
	SwiftDetector = NewDetector("swift", func(_, lower string) bool {
		if strings.Contains(lower, "let ") && strings.Contains(lower, "func ") {
			return true
		}
		for _, module := range []string{"import foundation", "import swiftui", "import uikit"} {
			if strings.Contains(lower, module) {
				return true
			}
		}
		return false
	})
)

// DefaultRegistry returns a registry holding the built-in detectors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(PythonDetector, "python", "py")
	r.Register(JavaDetector, "java")
	r.Register(CppDetector, "cpp", "c++")
	r.Register(CDetector, "c")
	r.Register(CSharpDetector, "csharp", "c#", "cs")
	r.Register(JavaScriptDetector, "javascript", "js")
	r.Register(TypeScriptDetector, "typescript", "ts")
	r.Register(GoDetector, "golang", "go")
	r.Register(RustDetector, "rust")
	r.Register(KotlinDetector, "kotlin")
	r.Register(SwiftDetector, "swift")
	return r
}

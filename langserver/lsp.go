// Package langserver implements editor integration for Ether: diagnostics
// on parse errors, hover over a name in scope, and document sync, over
// the Language Server Protocol (tliron/glsp + tliron/commonlog).
package langserver

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/etherlang/ether/compile"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/lexer"
	"github.com/etherlang/ether/object"
	"github.com/etherlang/ether/parser"
	"github.com/etherlang/ether/server"
)

const lspName = "ether-lsp"

// Server bridges LSP editor features to an Ether interpreter via a
// server.Worker, so document analysis never races with script execution
// on the same interpreter.
type Server struct {
	worker  *server.Worker
	session *server.Session

	mu   sync.Mutex
	docs map[string]string

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// New creates a Server wrapping worker, evaluating and inspecting names
// in session's scope.
func New(worker *server.Worker, session *server.Session) *Server {
	s := &Server{
		worker:  worker,
		session: session,
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// Run starts the LSP server on stdio, blocking until the client
// disconnects.
func (s *Server) Run() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Ether LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.docs[string(uri)] = whole.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, whole.Text)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, pos)
	if prefix == "" {
		return nil, nil
	}

	names := s.matchingGlobals(prefix)
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		kind := protocol.CompletionItemKindVariable
		detail := "global"
		n := name
		items = append(items, protocol.CompletionItem{
			Label:      n,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &n,
		})
	}
	return items, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	word := extractWord(text, pos)
	if word == "" {
		return nil, nil
	}

	result, err := s.worker.DoInSession(s.session, func(_ *interp.Interpreter) interface{} {
		v, found := s.session.Scope.Lookup(word)
		if !found {
			return nil
		}
		return v
	})
	if err != nil || result == nil {
		return nil, nil
	}
	v := result.(object.Value)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", word)
	describe(&b, v)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}, nil
}

func describe(b *strings.Builder, v object.Value) {
	switch t := v.(type) {
	case *object.Number:
		fmt.Fprintf(b, "a Number: `%g`", t.Val)
	case *object.String:
		fmt.Fprintf(b, "a String: `%q`", t.Val)
	case *object.Block:
		fmt.Fprintf(b, "a Block of %d parameter(s)", len(t.Params))
	case *object.Dynamic:
		if t.Name != "" {
			fmt.Fprintf(b, "an object named `%s`", t.Name)
		} else {
			b.WriteString("an object")
		}
	default:
		b.WriteString("a value")
	}
}

// matchingGlobals completes on names bound anywhere in the session's
// scope chain — its own top-level bindings plus everything inherited
// from the shared global scope. It does not attempt receiver-type
// inference, so it can't narrow to "selectors this object understands";
// that would need static typing this language doesn't have.
func (s *Server) matchingGlobals(prefix string) []string {
	lower := strings.ToLower(prefix)
	result, err := s.worker.DoInSession(s.session, func(_ *interp.Interpreter) interface{} {
		var out []string
		for _, name := range s.session.Scope.Names() {
			if strings.HasPrefix(strings.ToLower(name), lower) {
				out = append(out, name)
			}
		}
		return out
	})
	if err != nil {
		return nil
	}
	return result.([]string)
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	collector := diag.NewCollector(nil)
	l := lexer.New(text)
	p := parser.New(l, collector)
	prog := p.ParseProgram()
	if prog != nil {
		// still compile, exercising the lowering on the parsed tree. The
		// compiler takes no sink, so only the parser's messages reach the
		// collector. Compiling interns strings and blocks into the shared
		// environment, so it runs on the worker goroutine like everything
		// else that touches it.
		s.worker.DoInSession(s.session, func(_ *interp.Interpreter) interface{} {
			compile.New(s.env()).CompileSession(prog)
			return nil
		})
	}

	var diagnostics []protocol.Diagnostic
	for _, msg := range collector.Messages {
		severity := protocol.DiagnosticSeverityError
		source := lspName
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 0},
			},
			Severity: &severity,
			Source:   &source,
			Message:  msg,
		})
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *Server) env() *object.Environment {
	return s.worker.VM().Env
}

func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}
	if start == col {
		return ""
	}
	return line[start:col]
}

func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	if col < len(line) {
		ch := rune(line[col])
		if !(unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_') {
			return ""
		}
	}
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}
	end := col
	for end < len(line) {
		ch := rune(line[end])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			end++
		} else {
			break
		}
	}
	if start == end {
		return ""
	}
	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}

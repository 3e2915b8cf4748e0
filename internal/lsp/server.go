package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.lsp.dev/jsonrpc2"

	"github.com/vitiral/rag/internal/index"
	"github.com/vitiral/rag/internal/parser"
	"github.com/vitiral/rag/internal/types"
)

// maxWorkspaceSymbols caps workspace/symbol results
const maxWorkspaceSymbols = 500

// Server implements the LSP server
type Server struct {
	index     *index.Index
	documents *DocumentStore
	version   string
}

// NewServer creates a new LSP server
func NewServer(idx *index.Index, version string) *Server {
	return &Server{
		index:     idx,
		documents: NewDocumentStore(),
		version:   version,
	}
}

// Serve starts the LSP server on the given reader/writer
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handler)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	log.Printf("LSP request: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		log.Printf("shutting down with %d open documents", len(s.documents.URIs()))
		return reply(ctx, nil, nil)
	case "exit":
		return nil
	case "textDocument/definition":
		return s.handleDefinition(ctx, reply, req)
	case "textDocument/references":
		return s.handleReferences(ctx, reply, req)
	case "textDocument/hover":
		return s.handleHover(ctx, reply, req)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(ctx, reply, req)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(ctx, reply, req)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		// Method not found
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

func invalidParams(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	return reply(ctx, nil, &jsonrpc2.Error{
		Code:    jsonrpc2.InvalidParams,
		Message: err.Error(),
	})
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			DefinitionProvider:      true,
			ReferencesProvider:      true,
			HoverProvider:           true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
		},
		ServerInfo: &ServerInfo{
			Name:    "docparse",
			Version: s.version,
		},
	}
	return reply(ctx, result, nil)
}

// wordAt returns the identifier under the cursor of a position request
func (s *Server) wordAt(params TextDocumentPositionParams) string {
	content := s.getDocumentContent(params.TextDocument.URI)
	if content == "" {
		return ""
	}
	return extractWordAt(content, int(params.Position.Line), int(params.Position.Character))
}

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return invalidParams(ctx, reply, err)
	}

	word := s.wordAt(params)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	filePath := uriToPath(params.TextDocument.URI)
	log.Printf("definition request for word: %s at %s:%d:%d", word, filePath, params.Position.Line, params.Position.Character)

	symbols := s.index.FindDefinitionsInFile(word, filePath)
	if len(symbols) == 0 {
		return reply(ctx, nil, nil)
	}

	// Convert to LSP locations
	if len(symbols) == 1 {
		return reply(ctx, symbolToLocation(symbols[0]), nil)
	}

	locations := make([]Location, len(symbols))
	for i, sym := range symbols {
		locations[i] = symbolToLocation(sym)
	}
	return reply(ctx, locations, nil)
}

func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return invalidParams(ctx, reply, err)
	}

	word := s.wordAt(params.TextDocumentPositionParams)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	log.Printf("references request for word: %s", word)

	// Deduplicate by location key (file:line:col)
	seen := make(map[string]struct{})
	var locations []Location

	add := func(loc Location) {
		key := fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		locations = append(locations, loc)
	}

	// Declarations are found by the text search as well; without
	// includeDeclaration they are filtered out.
	declared := make(map[string]struct{})
	for _, sym := range s.index.FindDefinitions(word) {
		loc := symbolToLocation(sym)
		declared[fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)] = struct{}{}
		if params.Context.IncludeDeclaration {
			add(loc)
		}
	}

	for _, ref := range s.index.FindReferences(word) {
		loc := Location{
			URI: pathToURI(ref.FilePath),
			Range: Range{
				Start: Position{
					Line:      uint32(ref.Line - 1),
					Character: uint32(ref.Column),
				},
				End: Position{
					Line:      uint32(ref.Line - 1),
					Character: uint32(ref.Column + ref.Length),
				},
			},
		}
		key := fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)
		if _, ok := declared[key]; ok && !params.Context.IncludeDeclaration {
			continue
		}
		add(loc)
	}

	return reply(ctx, locations, nil)
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return invalidParams(ctx, reply, err)
	}

	word := s.wordAt(params)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	symbols := s.index.FindDefinitionsInFile(word, uriToPath(params.TextDocument.URI))
	if len(symbols) == 0 {
		return reply(ctx, nil, nil)
	}

	sections := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sections = append(sections, hoverText(sym))
	}
	return reply(ctx, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: strings.Join(sections, "\n\n---\n\n"),
		},
	}, nil)
}

// hoverText renders a symbol's signature and documentation as markdown
func hoverText(sym *index.Symbol) string {
	var b strings.Builder
	if len(sym.Scope) > 0 {
		fmt.Fprintf(&b, "%s\n\n", strings.Join(sym.Scope, "::"))
	}
	fmt.Fprintf(&b, "```rust\n%s\n```", sym.Signature)
	if sym.Doc != "" {
		fmt.Fprintf(&b, "\n\n%s", sym.Doc)
	}
	return b.String()
}

func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return invalidParams(ctx, reply, err)
	}

	content := s.getDocumentContent(params.TextDocument.URI)
	blocks, err := parser.Extract(content)
	if err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InternalError,
			Message: err.Error(),
		})
	}

	return reply(ctx, documentSymbols(content, blocks), nil)
}

// documentSymbols nests blocks by span. blocks must be sorted by start.
func documentSymbols(content string, blocks []types.CodeBlock) []*DocumentSymbol {
	li := types.NewLineIndex(content)

	roots := []*DocumentSymbol{}
	var stack []*DocumentSymbol
	var spans []types.Span

	for _, block := range blocks {
		sym := &DocumentSymbol{
			Name:           block.Name,
			Detail:         block.Signature,
			Kind:           symbolKind(block.Kind),
			Range:          spanRange(li, block.Span),
			SelectionRange: spanRange(li, block.NameSpan),
		}

		for len(stack) > 0 && !spans[len(spans)-1].Contains(block.Span) {
			stack = stack[:len(stack)-1]
			spans = spans[:len(spans)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, sym)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, sym)
		}
		stack = append(stack, sym)
		spans = append(spans, block.Span)
	}
	return roots
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params WorkspaceSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return invalidParams(ctx, reply, err)
	}

	symbols := s.index.SearchSymbols(params.Query, maxWorkspaceSymbols)
	result := make([]SymbolInformation, 0, len(symbols))
	for _, sym := range symbols {
		result = append(result, SymbolInformation{
			Name:          sym.Name,
			Kind:          symbolKind(sym.Kind),
			Location:      symbolToLocation(sym),
			ContainerName: strings.Join(sym.Scope, "::"),
		})
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	doc := params.TextDocument
	s.documents.Open(doc.URI, doc.Version, doc.Text)
	s.reindex(doc.URI, doc.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	if len(params.ContentChanges) > 0 {
		// Full sync mode - just take the last content
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.documents.Update(params.TextDocument.URI, params.TextDocument.Version, text)
		s.reindex(params.TextDocument.URI, text)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	uri := params.TextDocument.URI
	s.documents.Close(uri)

	// Unsaved edits are dropped; go back to what is on disk
	path := uriToPath(uri)
	if !s.index.Filter().Match(path) {
		return reply(ctx, nil, nil)
	}
	if _, err := os.Stat(path); err != nil {
		s.index.RemoveFile(path)
	} else if err := s.index.UpdateFile(path); err != nil {
		log.Printf("failed to reindex %s: %v", path, err)
	}
	return reply(ctx, nil, nil)
}

// reindex indexes the editor's copy of a workspace document
func (s *Server) reindex(uri, text string) {
	path := uriToPath(uri)
	if !s.index.Filter().Match(path) {
		return
	}
	if err := s.index.AddContent(path, text); err != nil {
		log.Printf("failed to index %s: %v", path, err)
	}
}

func (s *Server) getDocumentContent(uri string) string {
	// Check open documents first
	if content, ok := s.documents.Get(uri); ok {
		return content
	}

	// Fall back to reading from disk
	path := uriToPath(uri)
	content, err := readFile(path)
	if err != nil {
		log.Printf("failed to read file %s: %v", path, err)
		return ""
	}
	return content
}

// readWriteCloser wraps reader and writer into a ReadWriteCloser
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	return nil
}

package lsp

import (
	"os"
	"strings"

	"github.com/vitiral/rag/internal/index"
	"github.com/vitiral/rag/internal/types"
)

// LSP Protocol types - minimal set for navigation and outline

// TextDocumentSyncKind defines how text document changes are synced
type TextDocumentSyncKind int

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

// SymbolKind is the LSP symbol kind
type SymbolKind int

const (
	SymbolKindModule    SymbolKind = 2
	SymbolKindEnum      SymbolKind = 10
	SymbolKindInterface SymbolKind = 11
	SymbolKindFunction  SymbolKind = 12
	SymbolKindStruct    SymbolKind = 23
)

// Position in a text document. Character is a byte offset in the line.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location represents a location in a resource
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// TextDocumentIdentifier identifies a text document
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a versioned text document
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentItem represents an open text document
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentPositionParams is a parameter for requests that require a position
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// ReferenceContext includes info about reference requests
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// ReferenceParams for textDocument/references
type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

// DocumentSymbolParams for textDocument/documentSymbol
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DocumentSymbol is one block in a document outline
type DocumentSymbol struct {
	Name           string            `json:"name"`
	Detail         string            `json:"detail,omitempty"`
	Kind           SymbolKind        `json:"kind"`
	Range          Range             `json:"range"`
	SelectionRange Range             `json:"selectionRange"`
	Children       []*DocumentSymbol `json:"children,omitempty"`
}

// WorkspaceSymbolParams for workspace/symbol
type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

// SymbolInformation is a flat symbol returned by workspace/symbol
type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Location      Location   `json:"location"`
	ContainerName string     `json:"containerName,omitempty"`
}

// MarkupContent is formatted hover text
type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Hover is the result of textDocument/hover
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

// TextDocumentSyncOptions defines text document sync options
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose,omitempty"`
	Change    TextDocumentSyncKind `json:"change,omitempty"`
}

// ServerCapabilities defines what the server can do
type ServerCapabilities struct {
	TextDocumentSync        *TextDocumentSyncOptions `json:"textDocumentSync,omitempty"`
	DefinitionProvider      bool                     `json:"definitionProvider,omitempty"`
	ReferencesProvider      bool                     `json:"referencesProvider,omitempty"`
	HoverProvider           bool                     `json:"hoverProvider,omitempty"`
	DocumentSymbolProvider  bool                     `json:"documentSymbolProvider,omitempty"`
	WorkspaceSymbolProvider bool                     `json:"workspaceSymbolProvider,omitempty"`
}

// ServerInfo contains information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the result of the initialize request
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// DidOpenTextDocumentParams for textDocument/didOpen
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentContentChangeEvent describes changes to a text document
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidChangeTextDocumentParams for textDocument/didChange
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams for textDocument/didClose
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// Helper functions

// uriToPath converts a file:// URI to a file path
func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

// pathToURI converts a file path to a file:// URI
func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// symbolKind maps a block kind to the closest LSP kind. Traits are reported
// as interfaces.
func symbolKind(kind types.BlockKind) SymbolKind {
	switch kind {
	case types.KindEnum:
		return SymbolKindEnum
	case types.KindStruct:
		return SymbolKindStruct
	case types.KindTrait:
		return SymbolKindInterface
	case types.KindModule:
		return SymbolKindModule
	default:
		return SymbolKindFunction
	}
}

// symbolToLocation converts an index.Symbol to an LSP Location covering its name
func symbolToLocation(sym *index.Symbol) Location {
	return Location{
		URI: pathToURI(sym.FilePath),
		Range: Range{
			Start: Position{
				Line:      uint32(sym.NameLine - 1), // LSP is 0-indexed
				Character: uint32(sym.NameCol),
			},
			End: Position{
				Line:      uint32(sym.NameLine - 1),
				Character: uint32(sym.NameCol + len(sym.Name)),
			},
		},
	}
}

// spanRange converts a byte span to an LSP range
func spanRange(li *types.LineIndex, span types.Span) Range {
	startLine, startCol := li.Position(span.Start)
	endLine, endCol := li.Position(span.End)
	return Range{
		Start: Position{Line: uint32(startLine), Character: uint32(startCol)},
		End:   Position{Line: uint32(endLine), Character: uint32(endCol)},
	}
}

// extractWordAt extracts the identifier at the given position in the content
func extractWordAt(content string, line, char int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	lineText := lines[line]
	if char < 0 || char >= len(lineText) {
		// Try to find the last word if char is at/past end
		if char >= len(lineText) && len(lineText) > 0 {
			char = len(lineText) - 1
		} else {
			return ""
		}
	}

	// Find word boundaries
	start := char
	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}

	end := char
	for end < len(lineText) && isWordChar(lineText[end]) {
		end++
	}

	if start == end {
		return ""
	}

	return lineText[start:end]
}

// isWordChar returns true if c can be part of an identifier. Bytes of
// multi-byte characters count so non-ASCII names stay whole.
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c >= 0x80
}

// readFile reads a file from disk
func readFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

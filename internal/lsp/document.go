package lsp

import (
	"sort"
	"sync"
)

// DocumentStore holds the editor's copy of open documents
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// Document is an open document at one version
type Document struct {
	URI     string
	Version int
	Content string
}

// NewDocumentStore creates a new document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*Document),
	}
}

// Open records a document as open
func (ds *DocumentStore) Open(uri string, version int, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[uri] = &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
}

// Update replaces a document's content. Older versions than the stored one
// are ignored; an unknown document is opened.
func (ds *DocumentStore) Update(uri string, version int, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	doc, ok := ds.docs[uri]
	if !ok {
		ds.docs[uri] = &Document{URI: uri, Version: version, Content: content}
		return
	}
	if version < doc.Version {
		return
	}
	doc.Version = version
	doc.Content = content
}

// Close removes a document
func (ds *DocumentStore) Close(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

// Get returns a document's content
func (ds *DocumentStore) Get(uri string) (string, bool) {
	doc, ok := ds.Snapshot(uri)
	return doc.Content, ok
}

// Snapshot returns a copy of the document
func (ds *DocumentStore) Snapshot(uri string) (Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if doc, ok := ds.docs[uri]; ok {
		return *doc, true
	}
	return Document{}, false
}

// URIs returns the open documents in sorted order
func (ds *DocumentStore) URIs() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	uris := make([]string, 0, len(ds.docs))
	for uri := range ds.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

package index

import "github.com/vitiral/rag/internal/types"

// Re-export types so callers need only this package
type Symbol = types.Symbol
type BlockKind = types.BlockKind
type Reference = types.Reference

// Re-export constants
const (
	KindFunction = types.KindFunction
	KindEnum     = types.KindEnum
	KindStruct   = types.KindStruct
	KindTrait    = types.KindTrait
	KindModule   = types.KindModule
)

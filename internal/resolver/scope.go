package resolver

import (
	"path/filepath"
	"strings"

	"github.com/bates64/vscode-star-rod/internal/lang/lib"
	"github.com/bates64/vscode-star-rod/internal/workspace"
)

// ScopesFor maps a document to the database partitions that apply to
// it, most general first. Every document sees common; world and battle
// files add their family partition; global patch files cut across all
// of them.
func ScopesFor(path string) []string {
	switch strings.ToLower(filepath.Ext(path)) {
	case workspace.ExtWorldScript, workspace.ExtWorldPatch:
		return []string{lib.ScopeCommon, lib.ScopeWorld}
	case workspace.ExtBattleScript, workspace.ExtBattlePatch:
		return []string{lib.ScopeCommon, lib.ScopeBattle}
	case workspace.ExtGlobalPatch:
		return lib.Scopes()
	default:
		return []string{lib.ScopeCommon}
	}
}

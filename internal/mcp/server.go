package mcp

import (
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chronos-mythica/mythica/internal/config"
	"github.com/chronos-mythica/mythica/internal/generate"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"mythic_prose": {
		def:     mythicProseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMythicProse },
	},
	"future_response": {
		def:     futureResponseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFutureResponse },
	},
	"emotion_list": {
		def:     emotionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEmotionList },
	},
	"memory_add": {
		def:     memoryAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMemoryAdd },
	},
	"memory_list": {
		def:     memoryListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMemoryList },
	},
	"memory_narrate": {
		def:     memoryNarrateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMemoryNarrate },
	},
	"letter_write": {
		def:     letterWriteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLetterWrite },
	},
	"letter_list": {
		def:     letterListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLetterList },
	},
	"letter_unlock": {
		def:     letterUnlockToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLetterUnlock },
	},
	"manuscript_pages": {
		def:     manuscriptToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleManuscript },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server acting as cfg.MCPUserID.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(database *sqlx.DB, gen *generate.Generator, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mythica",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(database, gen, cfg.MCPUserID)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves s over stdio until stdin closes.
func Run(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

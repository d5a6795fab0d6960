package mcp

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/generate"
	"github.com/chronos-mythica/mythica/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sqlx.DB
	gen    *generate.Generator
	userID string
}

// NewHandlers creates handlers acting as userID.
func NewHandlers(database *sqlx.DB, gen *generate.Generator, userID string) *Handlers {
	return &Handlers{db: database, gen: gen, userID: userID}
}

// MemoryListRequest represents the arguments for memory_list.
type MemoryListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// IDRequest represents the arguments for tools addressing one record.
type IDRequest struct {
	ID string `json:"id"`
}

// HandleMythicProse handles the mythic_prose tool call.
func (h *Handlers) HandleMythicProse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[generate.MemoryNarration](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return h.generate(ctx, generate.KindMythicProse, input)
}

// HandleFutureResponse handles the future_response tool call.
func (h *Handlers) HandleFutureResponse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[generate.FutureResponse](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return h.generate(ctx, generate.KindFutureResponse, input)
}

func (h *Handlers) generate(ctx context.Context, kind generate.Kind, payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}

	result, err := ops.Generate(ctx, h.db, h.gen, h.userID, ops.GenerateInput{Type: string(kind), Data: data})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]string{
		kind.ResultKey(): result.Text,
		"source":         string(result.Source),
	})
}

// HandleEmotionList handles the emotion_list tool call.
func (h *Handlers) HandleEmotionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListEmotions(ctx, h.db, h.userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"items": result})
}

// HandleMemoryAdd handles the memory_add tool call.
func (h *Handlers) HandleMemoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AddMemoryInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddMemory(ctx, h.db, h.gen, h.userID, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMemoryList handles the memory_list tool call.
func (h *Handlers) HandleMemoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MemoryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListMemories(ctx, h.db, h.userID, ops.ListMemoriesInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMemoryNarrate handles the memory_narrate tool call.
func (h *Handlers) HandleMemoryNarrate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.NarrateMemory(ctx, h.db, h.gen, h.userID, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLetterWrite handles the letter_write tool call.
func (h *Handlers) HandleLetterWrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.WriteLetterInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.WriteLetter(ctx, h.db, h.userID, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLetterList handles the letter_list tool call.
func (h *Handlers) HandleLetterList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListLetters(ctx, h.db, h.userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"items": result})
}

// HandleLetterUnlock handles the letter_unlock tool call.
func (h *Handlers) HandleLetterUnlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UnlockLetter(ctx, h.db, h.gen, h.userID, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleManuscript handles the manuscript_pages tool call.
func (h *Handlers) HandleManuscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Manuscript(ctx, h.db, h.userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"pages": result})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	code, message, status := errors.Public(err)
	errorObj := map[string]any{
		"code":    code,
		"message": message,
		"status":  status,
	}
	if mErr := errors.As(err); code != errors.ErrInternal && mErr.Details != nil {
		errorObj["details"] = mErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

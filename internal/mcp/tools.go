package mcp

import "github.com/mark3labs/mcp-go/mcp"

var mythicProseToolDef = mcp.NewTool("mythic_prose",
	mcp.WithDescription("Rewrite a memory as mythic prose. Uses the user's provider key when set, otherwise the built-in narrator."),
	mcp.WithString("title", mcp.Description("Memory title")),
	mcp.WithString("description", mcp.Description("What happened")),
	mcp.WithArray("emotions", mcp.Description("Emotion names, primary first"), mcp.WithStringItems()),
	mcp.WithString("date", mcp.Description("Memory date, YYYY-MM-DD")),
)

var futureResponseToolDef = mcp.NewTool("future_response",
	mcp.WithDescription("Answer a letter as the writer's future self."),
	mcp.WithString("letterContent", mcp.Required(), mcp.Description("The letter text")),
	mcp.WithString("unlockDate", mcp.Description("Unlock date, YYYY-MM-DD")),
)

var emotionListToolDef = mcp.NewTool("emotion_list",
	mcp.WithDescription("List built-in and custom emotions."),
)

var memoryAddToolDef = mcp.NewTool("memory_add",
	mcp.WithDescription("Record a memory, place its stars, and optionally narrate it."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Memory title")),
	mcp.WithString("description", mcp.Description("What happened")),
	mcp.WithString("memory_date", mcp.Description("YYYY-MM-DD, default today")),
	mcp.WithString("mythic_prose", mcp.Description("Prose to store as-is")),
	mcp.WithArray("emotion_ids", mcp.Description("Emotion IDs, primary first"), mcp.WithStringItems()),
	mcp.WithBoolean("generate", mcp.Description("Narrate when no prose is given")),
)

var memoryListToolDef = mcp.NewTool("memory_list",
	mcp.WithDescription("List memories, newest first."),
	mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var memoryNarrateToolDef = mcp.NewTool("memory_narrate",
	mcp.WithDescription("Regenerate a stored memory's mythic prose."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Memory ID")),
)

var letterWriteToolDef = mcp.NewTool("letter_write",
	mcp.WithDescription("Seal a letter to the future self."),
	mcp.WithString("content", mcp.Required(), mcp.Description("Letter text")),
	mcp.WithString("unlock_date", mcp.Required(), mcp.Description("YYYY-MM-DD, today or later")),
)

var letterListToolDef = mcp.NewTool("letter_list",
	mcp.WithDescription("List letters with their unlock status."),
)

var letterUnlockToolDef = mcp.NewTool("letter_unlock",
	mcp.WithDescription("Open a letter whose unlock date has arrived and receive the future self's answer."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Letter ID")),
)

var manuscriptToolDef = mcp.NewTool("manuscript_pages",
	mcp.WithDescription("Return the user's manuscript pages."),
)

package mcpadapter

import "github.com/mark3labs/mcp-go/mcp"

var classifyToolDef = mcp.NewTool("screenshot_classify",
	mcp.WithDescription("Classify a screenshot with the vision model and store it: blob, catalog row, category links and analysis history."),
	mcp.WithString("image_base64", mcp.Required(), mcp.Description("Image bytes, base64-encoded. A data URL prefix is accepted and stripped.")),
	mcp.WithString("filename", mcp.Description("Original filename; used to derive the storage key extension.")),
	mcp.WithString("mime_type", mcp.Description("Image MIME type; defaults to image/png.")),
)

var analyzeToolDef = mcp.NewTool("screenshot_analyze",
	mcp.WithDescription("Classify a screenshot without storing anything; returns the full judgement."),
	mcp.WithString("image_base64", mcp.Required(), mcp.Description("Image bytes, base64-encoded.")),
	mcp.WithString("mime_type", mcp.Description("Image MIME type; defaults to image/png.")),
)

var extractTextToolDef = mcp.NewTool("screenshot_extract_text",
	mcp.WithDescription("Extract the readable text from a screenshot; returns only the transcript."),
	mcp.WithString("image_base64", mcp.Required(), mcp.Description("Image bytes, base64-encoded.")),
	mcp.WithString("mime_type", mcp.Description("Image MIME type; defaults to image/png.")),
)

var searchToolDef = mcp.NewTool("screenshot_search",
	mcp.WithDescription("List stored screenshots, newest upload first. All given filters are combined with AND."),
	mcp.WithString("category", mcp.Description("Only screenshots currently linked to this category name.")),
	mcp.WithBoolean("important_only", mcp.Description("Only screenshots flagged important.")),
	mcp.WithString("date_from", mcp.Description("Inclusive lower upload-date bound, RFC3339 or YYYY-MM-DD.")),
	mcp.WithString("date_to", mcp.Description("Inclusive upper upload-date bound, RFC3339 or YYYY-MM-DD.")),
	mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 200.")),
	mcp.WithNumber("offset", mcp.Description("Page offset, default 0.")),
)

var getToolDef = mcp.NewTool("screenshot_get",
	mcp.WithDescription("Fetch one screenshot: summary, current category links and the full analysis history, most recent first."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Screenshot id.")),
)

var reanalyzeToolDef = mcp.NewTool("screenshot_reanalyze",
	mcp.WithDescription("Re-run classification on a stored screenshot. Replaces summary fields and category links, appends to the history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Screenshot id.")),
)

var statsToolDef = mcp.NewTool("screenshot_stats",
	mcp.WithDescription("Aggregate counts: totals, important count, byte size and a per-category breakdown."),
)

var cleanupToolDef = mcp.NewTool("screenshot_cleanup",
	mcp.WithDescription("Select screenshots the classifier was confident are unimportant. Dry-run reports candidates; execute deletes blob and row."),
	mcp.WithNumber("confidence_threshold", mcp.Description("Inclusive confidence floor in [0,1]; defaults to the configured threshold.")),
	mcp.WithBoolean("dry_run", mcp.Description("Report candidates without deleting.")),
)

var deleteToolDef = mcp.NewTool("screenshot_delete",
	mcp.WithDescription("Delete a screenshot: blob, catalog row and, via cascade, its history and category links."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Screenshot id.")),
)

package models

// Tool names. The first three run server-side; the rest are client-local
// UI actions forwarded to the frontend untouched.
const (
	ToolWebSearch    = "web_search"
	ToolBrowseURL    = "browse_url"
	ToolSearchEmails = "search_emails"
	ToolPrepareDraft = "prepare_draft"
	ToolArchiveEmail = "archive_email"
	ToolOpenThread   = "open_thread"
	ToolGoToFolder   = "go_to_folder"
)

// Declarations returns the fixed tool schema advertised to every provider.
func Declarations() []FunctionDeclaration {
	return []FunctionDeclaration{
		{
			Name:        ToolWebSearch,
			Description: "Search the web for current information. Use for questions about recent events or anything outside the user's mailbox.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{"type": "string", "description": "The search query"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolBrowseURL,
			Description: "Fetch and read the content of a web page. Only https URLs are supported.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]any{
					"url": map[string]any{"type": "string", "description": "The https URL to read"},
				},
				Required: []string{"url"},
			},
		},
		{
			Name:        ToolSearchEmails,
			Description: "Search the user's mailbox. Supports Gmail query syntax, e.g. 'from:alice subject:invoice'.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]any{
					"query":       map[string]any{"type": "string", "description": "The Gmail search query"},
					"max_results": map[string]any{"type": "integer", "description": "Maximum conversations to return, at most 10"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolPrepareDraft,
			Description: "Open a reply draft in the client, pre-filled with the given body. Does not send anything.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]any{
					"to":      map[string]any{"type": "string", "description": "Recipient address"},
					"subject": map[string]any{"type": "string", "description": "Draft subject"},
					"body":    map[string]any{"type": "string", "description": "Draft body text"},
				},
				Required: []string{"body"},
			},
		},
		{
			Name:        ToolArchiveEmail,
			Description: "Archive the email thread the user is currently viewing.",
			Parameters: Parameters{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        ToolOpenThread,
			Description: "Navigate the client to a specific email thread.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]any{
					"thread_id": map[string]any{"type": "string", "description": "The thread to open"},
				},
				Required: []string{"thread_id"},
			},
		},
		{
			Name:        ToolGoToFolder,
			Description: "Navigate the client to a mailbox folder such as inbox, sent or archive.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]any{
					"folder": map[string]any{"type": "string", "description": "Folder name"},
				},
				Required: []string{"folder"},
			},
		},
	}
}

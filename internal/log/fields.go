package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldChatID    = "chat_id"
	FieldCommand   = "command"
	FieldArgs      = "args"
	FieldError     = "error"
	FieldPath      = "path"
	FieldSource    = "source"
	FieldBytes     = "bytes"
	FieldRows      = "rows"
	FieldSkipped   = "skipped_rows"
	FieldProject   = "project"
	FieldPeriod    = "period"
	FieldCacheKey  = "cache_key"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentBot    = "bot"
	ComponentEngine = "engine"
	ComponentFetch  = "fetch"
	ComponentWorker = "worker"
	ComponentCache  = "cache"
)

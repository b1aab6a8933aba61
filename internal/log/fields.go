package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldRecordID   = "record_id"
	FieldUserID     = "user_id"
	FieldAmount     = "amount_cents"
	FieldOccurredOn = "occurred_on"
	FieldAttachment = "attachment"
	FieldBatchSize  = "batch_size"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentLedger = "ledger"
	ComponentImport = "import"
	ComponentExport = "export"
	ComponentStore  = "store"
	ComponentBlob   = "blob"
	ComponentAuth   = "auth"
	ComponentLive   = "live"
	ComponentAMQP   = "amqp"
	ComponentWorker = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpImport   = "import"
	OpExport   = "export"
	OpUpload   = "upload"
	OpCleanup  = "cleanup"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldCategoryID    = "category_id"
	FieldGoalID        = "goal_id"
	FieldContribution  = "contribution_id"
	FieldAmount        = "amount"
	FieldKind          = "type"
	FieldEventType     = "event_type"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentLedger     = "ledger"
	ComponentGoals      = "goals"
	ComponentCategories = "categories"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentCache      = "cache"
	ComponentSecurity   = "security"
	ComponentTrace      = "trace"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpContribute = "contribute"
	OpReverse    = "reverse"
	OpReconcile  = "reconcile"
	OpMirror     = "mirror"
	OpPublish    = "publish"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the identifying fields of a ledger entry.
func (f LogFields) WithTransaction(id, categoryID, kind, amount string) LogFields {
	f[FieldTransactionID] = id
	f[FieldCategoryID] = categoryID
	f[FieldKind] = kind
	f[FieldAmount] = amount
	return f
}

// WithGoal adds goal fields; amount is omitted when empty.
func (f LogFields) WithGoal(goalID, amount string) LogFields {
	f[FieldGoalID] = goalID
	if amount != "" {
		f[FieldAmount] = amount
	}
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

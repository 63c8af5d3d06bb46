package log

import "gastos/internal/core"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOwnerID    = "owner_id"
	FieldChatID     = "chat_id"
	FieldUpdateID   = "update_id"
	FieldIntent     = "intent"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldMethod     = "method"
	FieldOccurredOn = "occurred_on"
	FieldRecordID   = "record_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBot     = "bot"
	ComponentLedger  = "ledger"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
	ComponentSheets  = "sheets"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpAppend = "append"
	OpRead   = "read"
	OpSync   = "sync"
	OpRender = "render"
	OpReply  = "reply"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOwner(owner core.OwnerID) LogFields {
	f[FieldOwnerID] = int64(owner)
	return f
}

func (f LogFields) WithIntent(intent string) LogFields {
	f[FieldIntent] = intent
	return f
}

// WithError adds the error message; nil errors are ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the record's fields. Amounts are logged unrounded.
func (f LogFields) WithRecord(r core.Record) LogFields {
	f[FieldOwnerID] = int64(r.OwnerID)
	f[FieldAmount] = r.Amount.String()
	f[FieldCategory] = r.Category
	f[FieldMethod] = r.Method
	f[FieldOccurredOn] = r.OccurredOn.ISO()
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

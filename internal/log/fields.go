package log

// Field names shared by every component.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldMonth     = "month"
	FieldSource    = "source"
	FieldBackend   = "backend"
	FieldMode      = "mode"
	FieldPeriods   = "periods"
	FieldCount     = "count"
	FieldSkipped   = "skipped"
	FieldVersion   = "version"
	FieldPolicy    = "policy"
	FieldFile      = "file"
	FieldPath      = "path"
	FieldMethod    = "method"
	FieldStatus    = "status_code"
)

const (
	ComponentApp       = "app"
	ComponentDashboard = "dashboard"
	ComponentPlanner   = "planner"
	ComponentImporter  = "importer"
	ComponentStorage   = "storage"
	ComponentMemory    = "memory"
	ComponentSheets    = "sheets"
	ComponentREST      = "rest"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentBackend   = "backend"
	ComponentMetrics   = "metrics"
	ComponentCache     = "cache"
)

const (
	OpList     = "list"
	OpRead     = "read"
	OpSave     = "save"
	OpImport   = "import"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpSnapshot = "snapshot"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields builds a set of structured attributes.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) WithMonth(month string) Fields {
	f[FieldMonth] = month
	return f
}

func (f Fields) WithSource(source string) Fields {
	f[FieldSource] = source
	return f
}

// With sets an arbitrary field.
func (f Fields) With(key string, value any) Fields {
	f[key] = value
	return f
}

// ToSlice flattens the fields into slog key/value pairs.
func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

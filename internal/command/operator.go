package command

// Operator is one parsed client command, ready for execution. Each command
// kind is its own variant so the executor can switch exhaustively on the
// concrete type.
type Operator interface {
	isOperator()
}

// ErrorCommand carries a human-readable diagnostic for malformed input.
// It executes to its diagnostic and mutates nothing.
type ErrorCommand struct {
	Diag string
}

type CreateDatabase struct {
	Name string
}

type CreateTable struct {
	DBName   string
	Name     string // qualified: db.table
	ColCount int
}

type CreateColumn struct {
	TableName string
	Name      string // qualified: db.table.column
}

type Load struct {
	Path string
}

type Insert struct {
	TableName string
	Values    []int64
}

// SelectRange selects row ids of Column whose value v satisfies
// Low <= v < High. Handle names the result in the session context.
type SelectRange struct {
	Column string
	Low    int64
	High   int64
	Handle string
}

// Fetch materializes Column's values at the row ids stored under Handle.
type Fetch struct {
	Column string
	Handle string
}

// BatchBegin switches the session into batching mode: subsequent selects
// are enqueued instead of executed.
type BatchBegin struct{}

// BatchExecute drains the batch queue and executes the pending selects in
// arrival order.
type BatchExecute struct{}

type Shutdown struct{}

func (ErrorCommand) isOperator()   {}
func (CreateDatabase) isOperator() {}
func (CreateTable) isOperator()    {}
func (CreateColumn) isOperator()   {}
func (Load) isOperator()           {}
func (Insert) isOperator()         {}
func (SelectRange) isOperator()    {}
func (Fetch) isOperator()          {}
func (BatchBegin) isOperator()     {}
func (BatchExecute) isOperator()   {}
func (Shutdown) isOperator()       {}

// Name reports the command kind for logging and metrics labels.
func Name(op Operator) string {
	switch op.(type) {
	case ErrorCommand:
		return "error"
	case CreateDatabase:
		return "create_db"
	case CreateTable:
		return "create_tbl"
	case CreateColumn:
		return "create_col"
	case Load:
		return "load"
	case Insert:
		return "relational_insert"
	case SelectRange:
		return "select"
	case Fetch:
		return "fetch"
	case BatchBegin:
		return "batch_queries"
	case BatchExecute:
		return "batch_execute"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

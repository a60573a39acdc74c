package command

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/kartikbazzad/coldb/internal/logger"
	"github.com/kartikbazzad/coldb/internal/store"
)

// Parser maps raw command text to Operators. It never fails the caller:
// malformed input yields an ErrorCommand carrying a diagnostic. The store
// is consulted only for relational_insert, whose value arity is checked
// against the target table's declared column count at parse time.
type Parser struct {
	store  *store.Store
	logger *logger.Logger
}

func NewParser(st *store.Store, log *logger.Logger) *Parser {
	return &Parser{store: st, logger: log}
}

// Parse turns one command line into an Operator. Comment lines (leading
// "--") produce no operator and a nil return. An optional "<handle>="
// prefix names the command's result in the session context.
//
// Validation is deliberately loose: the closing ")" is a textual
// last-character check, not a balanced parse, so malformed interior syntax
// that still ends in ")" passes the per-command token and count checks.
func (p *Parser) Parse(raw string) Operator {
	if strings.HasPrefix(raw, "--") {
		return nil
	}

	line := raw
	handle := ""
	if idx := strings.IndexByte(line, '='); idx >= 0 {
		handle = stripSpace(line[:idx])
		line = line[idx+1:]
		p.logger.Debug("result handle: %s", handle)
	}
	line = stripSpace(line)

	switch {
	case strings.HasPrefix(line, "create(db,"):
		return p.parseCreateDB(line[len("create(db,"):])
	case strings.HasPrefix(line, "create(tbl,"):
		return p.parseCreateTbl(line[len("create(tbl,"):])
	case strings.HasPrefix(line, "create(col,"):
		return p.parseCreateCol(line[len("create(col,"):])
	case strings.HasPrefix(line, "load("):
		return p.parseLoad(line[len("load("):])
	case strings.HasPrefix(line, "relational_insert"):
		return p.parseInsert(line[len("relational_insert"):])
	case strings.HasPrefix(line, "select("):
		return p.parseSelect(line[len("select("):], handle)
	case strings.HasPrefix(line, "fetch("):
		return p.parseFetch(line[len("fetch("):])
	case strings.HasPrefix(line, "batch_queries"):
		return BatchBegin{}
	case strings.HasPrefix(line, "batch_execute"):
		return BatchExecute{}
	case strings.HasPrefix(line, "shutdown"):
		return Shutdown{}
	default:
		p.logger.Error("error command: %q", raw)
		return ErrorCommand{Diag: "error command, please try again."}
	}
}

func (p *Parser) parseCreateDB(args string) Operator {
	name := trimQuotes(args)
	name, ok := trimClose(name)
	if !ok || name == "" {
		p.logger.Error("create database command is error")
		return ErrorCommand{Diag: `create database command is error, use command like [create(db,"name")]`}
	}
	return CreateDatabase{Name: name}
}

func (p *Parser) parseCreateTbl(args string) Operator {
	parts := strings.SplitN(args, ",", 3)
	if len(parts) != 3 {
		p.logger.Error("create table command is error")
		return ErrorCommand{Diag: `create table command is error, use command like [create(tbl,"grades",name,2)]`}
	}
	tblName := trimQuotes(parts[0])
	dbName := parts[1]
	colCnt, ok := trimClose(parts[2])
	if !ok || tblName == "" || dbName == "" {
		p.logger.Error("create table command is error")
		return ErrorCommand{Diag: `create table command is error, use command like [create(tbl,"grades",name,2)]`}
	}
	n, err := strconv.Atoi(colCnt)
	if err != nil || n < 1 {
		p.logger.Error("query unsupported, wrong column number")
		return ErrorCommand{Diag: "query unsupported, wrong column number"}
	}
	return CreateTable{
		DBName:   dbName,
		Name:     dbName + "." + tblName,
		ColCount: n,
	}
}

func (p *Parser) parseCreateCol(args string) Operator {
	parts := strings.SplitN(args, ",", 2)
	if len(parts) != 2 {
		p.logger.Error("create column command is error")
		return ErrorCommand{Diag: `create column command is error, use command like [create(col,"col_name",full_tbl_name)]`}
	}
	colName := trimQuotes(parts[0])
	tblName, ok := trimClose(parts[1])
	if !ok || colName == "" || tblName == "" {
		p.logger.Error("create column command is error")
		return ErrorCommand{Diag: `create column command is error, use command like [create(col,"col_name",full_tbl_name)]`}
	}
	return CreateColumn{
		TableName: tblName,
		Name:      tblName + "." + colName,
	}
}

func (p *Parser) parseLoad(args string) Operator {
	path := trimQuotes(args)
	path, ok := trimClose(path)
	if !ok || path == "" {
		p.logger.Error("load data command is error")
		return ErrorCommand{Diag: `load data command is error, use command like [load("data_path")]`}
	}
	return Load{Path: path}
}

func (p *Parser) parseInsert(args string) Operator {
	diag := "relational insert command is error, use command like [relational_insert(db.tbl,1,2,3)]"
	if !strings.HasPrefix(args, "(") {
		p.logger.Error("relational insert command is error")
		return ErrorCommand{Diag: diag}
	}
	body, ok := trimClose(args[1:])
	if !ok {
		p.logger.Error("relational insert command is error")
		return ErrorCommand{Diag: diag}
	}
	parts := strings.Split(body, ",")
	if len(parts) < 2 {
		p.logger.Error("relational insert command is error")
		return ErrorCommand{Diag: diag}
	}

	tblName := parts[0]
	tbl, err := p.store.LookupTable(tblName)
	if err != nil {
		p.logger.Error("relational insert into table %q: %v", tblName, err)
		if store.IsNotFound(err) {
			return ErrorCommand{Diag: "relational insert failed, table not found."}
		}
		return ErrorCommand{Diag: diag}
	}

	values := make([]int64, 0, len(parts)-1)
	for _, tok := range parts[1:] {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			p.logger.Error("relational insert value %q is not an integer", tok)
			return ErrorCommand{Diag: diag}
		}
		values = append(values, v)
	}
	if len(values) != tbl.ColCount {
		p.logger.Error("relational insert arity %d != %d", len(values), tbl.ColCount)
		return ErrorCommand{Diag: "relational insert failed, wrong number of values."}
	}
	return Insert{TableName: tblName, Values: values}
}

func (p *Parser) parseSelect(args, handle string) Operator {
	diag := "select command is error, use command like [h=select(db.tbl.col,low,high)]"
	parts := strings.SplitN(args, ",", 3)
	if len(parts) != 3 {
		p.logger.Error("select command is error")
		return ErrorCommand{Diag: diag}
	}
	high, ok := trimClose(parts[2])
	if !ok || parts[0] == "" {
		p.logger.Error("select command is error")
		return ErrorCommand{Diag: diag}
	}
	lo, err1 := strconv.ParseInt(parts[1], 10, 64)
	hi, err2 := strconv.ParseInt(high, 10, 64)
	if err1 != nil || err2 != nil {
		p.logger.Error("select range is not integral")
		return ErrorCommand{Diag: diag}
	}
	return SelectRange{Column: parts[0], Low: lo, High: hi, Handle: handle}
}

func (p *Parser) parseFetch(args string) Operator {
	diag := "fetch command is error, use command like [fetch(db.tbl.col,handle)]"
	parts := strings.SplitN(args, ",", 2)
	if len(parts) != 2 {
		p.logger.Error("fetch command is error")
		return ErrorCommand{Diag: diag}
	}
	handle, ok := trimClose(parts[1])
	if !ok || parts[0] == "" || handle == "" {
		p.logger.Error("fetch command is error")
		return ErrorCommand{Diag: diag}
	}
	return Fetch{Column: parts[0], Handle: handle}
}

// stripSpace removes every whitespace character, shortening the string.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// trimQuotes removes every double-quote character.
func trimQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// trimClose strips the trailing ")". The check is textual: only the last
// character is inspected.
func trimClose(s string) (string, bool) {
	if len(s) == 0 || s[len(s)-1] != ')' {
		return s, false
	}
	return s[:len(s)-1], true
}

package executor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kartikbazzad/coldb/internal/batch"
	"github.com/kartikbazzad/coldb/internal/command"
	"github.com/kartikbazzad/coldb/internal/errors"
	"github.com/kartikbazzad/coldb/internal/logger"
	"github.com/kartikbazzad/coldb/internal/metrics"
	"github.com/kartikbazzad/coldb/internal/session"
	"github.com/kartikbazzad/coldb/internal/store"
)

// Executor consumes Operators, mutates the store, and renders exactly one
// response string per operator. The first returned bool reports whether the
// operator succeeded; the second reports whether it was a shutdown, after
// which the caller sends the response, persists nothing further (Execute
// already persisted), and terminates.
type Executor struct {
	store  *store.Store
	queue  *batch.Queue
	logger *logger.Logger
}

func New(st *store.Store, q *batch.Queue, log *logger.Logger) *Executor {
	return &Executor{store: st, queue: q, logger: log}
}

func (e *Executor) Execute(sess *session.Session, op command.Operator) (string, bool, bool) {
	resp, ok, done := e.execute(sess, op)

	status := "ok"
	if !ok {
		status = "error"
	}
	metrics.CommandsTotal.WithLabelValues(command.Name(op), status).Inc()

	return resp, ok, done
}

func (e *Executor) execute(sess *session.Session, op command.Operator) (string, bool, bool) {
	switch o := op.(type) {
	case command.ErrorCommand:
		return o.Diag, false, false

	case command.CreateDatabase:
		if err := e.store.CreateDatabase(o.Name); err != nil {
			e.logger.Error("create database %q: %v", o.Name, err)
			return fmt.Sprintf("create database failed: %v", err), false, false
		}
		return "create database successfully.", true, false

	case command.CreateTable:
		if _, err := e.store.CreateTable(o.DBName, o.Name, o.ColCount); err != nil {
			e.logger.Error("create table %q: %v", o.Name, err)
			return fmt.Sprintf("create table failed: %v", err), false, false
		}
		return "create table successfully.", true, false

	case command.CreateColumn:
		if _, err := e.store.CreateColumn(o.TableName, o.Name); err != nil {
			e.logger.Error("create column %q: %v", o.Name, err)
			return fmt.Sprintf("create column failed: %v", err), false, false
		}
		return "create column successfully.", true, false

	case command.Load:
		if err := e.store.LoadCSV(o.Path); err != nil {
			e.logger.Error("load %q: %v", o.Path, err)
			return fmt.Sprintf("load data into database failed: %v", err), false, false
		}
		return "load data into database successfully.", true, false

	case command.Insert:
		if err := e.store.InsertRow(o.TableName, o.Values); err != nil {
			e.logger.Error("insert into %q: %v", o.TableName, err)
			return fmt.Sprintf("relational insert failed: %v", err), false, false
		}
		metrics.RowsInserted.Inc()
		return "relational insert successfully.", true, false

	case command.SelectRange:
		if sess.Batching() {
			e.queue.Enqueue(o, o.Handle)
			return "select query added into batch queue.", true, false
		}
		rows, err := e.store.SelectRange(o.Column, o.Low, o.High)
		if err != nil {
			e.logger.Error("select on %q: %v", o.Column, err)
			return fmt.Sprintf("select data failed: %v", err), false, false
		}
		sess.SetResult(o.Handle, rows)
		return "select data successfully.", true, false

	case command.Fetch:
		rows, ok := sess.Result(o.Handle)
		if !ok {
			e.logger.Error("fetch %q: %v", o.Handle, errors.ErrNoHandle)
			return fmt.Sprintf("fetch failed: handle %q not found.", o.Handle), false, false
		}
		values, err := e.store.FetchRows(o.Column, rows)
		if err != nil {
			e.logger.Error("fetch on %q: %v", o.Column, err)
			return fmt.Sprintf("fetch failed: %v", err), false, false
		}
		return formatValues(values), true, false

	case command.BatchBegin:
		sess.SetBatching(true)
		return "batch queries started.", true, false

	case command.BatchExecute:
		sess.SetBatching(false)
		for _, line := range e.queue.Show() {
			e.logger.Debug(line)
		}
		nodes := e.queue.Drain()
		failed := 0
		for _, node := range nodes {
			rows, err := e.store.SelectRange(node.Op.Column, node.Op.Low, node.Op.High)
			if err != nil {
				e.logger.Error("batched select on %q: %v", node.Op.Column, err)
				failed++
				continue
			}
			sess.SetResult(node.Handle, rows)
		}
		if failed > 0 {
			return fmt.Sprintf("batch executed %d queries, %d failed.", len(nodes), failed), false, false
		}
		return fmt.Sprintf("batch executed %d queries.", len(nodes)), true, false

	case command.Shutdown:
		if err := e.store.PersistCSV(); err != nil {
			// persistence failure is logged but never blocks termination
			e.logger.Error("persist all the data failed: %v", err)
		}
		return "persist all the data and shutdown the server.", true, true

	default:
		e.logger.Error("%T: %v", op, errors.ErrUnsupported)
		return "unsupported command, try again.", false, false
	}
}

func formatValues(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

package database

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"scolarite-backend/models"
)

// DumpVersion is the encoding version stamped into every JSON dump. Imports
// accept dumps with the same major version only.
const DumpVersion = "1.0.0"

type DumpMetadata struct {
	ExportDate string `json:"exportDate"`
	Version    string `json:"version"`
}

// Dump is the portable full-dataset snapshot: every collection plus
// metadata, suitable for a JSON round-trip between installations.
type Dump struct {
	Classes         []models.Class          `json:"classes"`
	Students        []models.Student        `json:"students"`
	Teachers        []models.Teacher        `json:"teachers"`
	Schedules       []models.Schedule       `json:"schedules"`
	ClassSchedules  []models.ClassSchedule  `json:"classSchedules"`
	Subjects        []models.Subject        `json:"subjects"`
	Grades          []models.Grade          `json:"grades"`
	Attendance      []models.Attendance     `json:"attendance"`
	Services        []models.Service        `json:"services"`
	ClassFees       []models.ClassFeeConfig `json:"classFees"`
	Payments        []models.StudentPayment `json:"payments"`
	TeacherPayments []models.TeacherPayment `json:"teacherPayments"`
	Metadata        DumpMetadata            `json:"metadata"`
}

// buildDump reads every collection off the store. Also used by the memory
// backend for its per-write snapshot side-channel.
func buildDump(cs CollectionStore) (*Dump, error) {
	d := &Dump{
		Classes:         []models.Class{},
		Students:        []models.Student{},
		Teachers:        []models.Teacher{},
		Schedules:       []models.Schedule{},
		ClassSchedules:  []models.ClassSchedule{},
		Subjects:        []models.Subject{},
		Grades:          []models.Grade{},
		Attendance:      []models.Attendance{},
		Services:        []models.Service{},
		ClassFees:       []models.ClassFeeConfig{},
		Payments:        []models.StudentPayment{},
		TeacherPayments: []models.TeacherPayment{},
		Metadata: DumpMetadata{
			ExportDate: time.Now().UTC().Format(time.RFC3339),
			Version:    DumpVersion,
		},
	}
	steps := []struct {
		name string
		dest any
	}{
		{"classes", &d.Classes},
		{"students", &d.Students},
		{"teachers", &d.Teachers},
		{"schedules", &d.Schedules},
		{"classSchedules", &d.ClassSchedules},
		{"subjects", &d.Subjects},
		{"grades", &d.Grades},
		{"attendance", &d.Attendance},
		{"services", &d.Services},
		{"classFees", &d.ClassFees},
		{"payments", &d.Payments},
		{"teacherPayments", &d.TeacherPayments},
	}
	for _, st := range steps {
		if err := cs.LoadCollection(st.name, st.dest); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// parseDump decodes a JSON dump and gates on the encoding version.
func parseDump(data []byte) (*Dump, error) {
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: not a JSON dump: %v", ErrUnsupportedFormat, err)
	}
	major, _, _ := strings.Cut(d.Metadata.Version, ".")
	wantMajor, _, _ := strings.Cut(DumpVersion, ".")
	if major != wantMajor {
		return nil, fmt.Errorf("%w: dump version %q, this build reads %q", ErrUnsupportedFormat, d.Metadata.Version, DumpVersion)
	}
	return &d, nil
}

// applyDump replaces every collection wholesale. No merge, no conflict
// resolution.
func applyDump(cs CollectionStore, d *Dump) error {
	steps := []struct {
		name  string
		value any
	}{
		{"classes", d.Classes},
		{"students", d.Students},
		{"teachers", d.Teachers},
		{"schedules", d.Schedules},
		{"classSchedules", d.ClassSchedules},
		{"subjects", d.Subjects},
		{"grades", d.Grades},
		{"attendance", d.Attendance},
		{"services", d.Services},
		{"classFees", d.ClassFees},
		{"payments", d.Payments},
		{"teacherPayments", d.TeacherPayments},
	}
	for _, st := range steps {
		if err := cs.ReplaceCollection(st.name, st.value); err != nil {
			return err
		}
	}
	return nil
}

// tableReader is the extra capability SQL-dump export needs: raw rows with
// a stable column order. Only the relational backends provide it.
type tableReader interface {
	TableRows(table string) ([]string, [][]any, error)
}

// Gateway serializes and restores the full data set, independent of any
// in-memory caches the stores above it keep.
type Gateway struct {
	store Store
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// ExportJSON snapshots every collection into a portable dump.
func (g *Gateway) ExportJSON() (*Dump, error) {
	return buildDump(g.store)
}

// ImportJSON fully replaces per-collection state from a JSON dump.
// Incompatible encodings fail with ErrUnsupportedFormat before any
// collection is touched.
func (g *Gateway) ImportJSON(data []byte) error {
	d, err := parseDump(data)
	if err != nil {
		log.Printf("database import rejected: %v", err)
		return err
	}
	if err := applyDump(g.store, d); err != nil {
		log.Printf("database import failed: %v", err)
		return err
	}
	return nil
}

// ExportSQL renders a textual reconstruction of every non-empty table: a
// "-- Table: name" comment plus one multi-row INSERT statement each.
func (g *Gateway) ExportSQL() ([]byte, error) {
	tr, ok := g.store.(tableReader)
	if !ok {
		return nil, fmt.Errorf("%w: SQL export requires a relational backend", ErrUnsupportedFormat)
	}

	var b strings.Builder
	b.WriteString("-- Scolarité - export de données\n")
	b.WriteString(fmt.Sprintf("-- Date: %s\n", time.Now().UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("-- Version: %s\n\n", DumpVersion))

	for _, col := range collections {
		cols, rows, err := tr.TableRows(col.table)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			b.WriteString(fmt.Sprintf("-- Table %s: aucune donnée\n\n", col.table))
			continue
		}
		b.WriteString(fmt.Sprintf("-- Table: %s\n", col.table))
		b.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES\n", col.table, strings.Join(cols, ", ")))
		for i, row := range rows {
			vals := make([]string, len(row))
			for j, v := range row {
				vals[j] = sqlLiteral(v)
			}
			sep := ",\n"
			if i == len(rows)-1 {
				sep = ";\n\n"
			}
			b.WriteString("  (" + strings.Join(vals, ", ") + ")" + sep)
		}
	}
	return []byte(b.String()), nil
}

// ImportSQL replays a SQL dump into a relational backend. State is fully
// replaced: every known table is cleared before the dump's statements run.
func (g *Gateway) ImportSQL(data []byte) error {
	if sc, ok := g.store.(interface{ SupportsStatements() bool }); ok && !sc.SupportsStatements() {
		err := fmt.Errorf("%w: SQL import requires a relational backend", ErrUnsupportedFormat)
		log.Printf("database import rejected: %v", err)
		return err
	}

	stmts := splitStatements(string(data))
	if len(stmts) == 0 {
		err := fmt.Errorf("%w: no statements in SQL dump", ErrUnsupportedFormat)
		log.Printf("database import rejected: %v", err)
		return err
	}

	for _, col := range collections {
		if _, err := g.store.Execute("DELETE FROM " + col.table); err != nil {
			return err
		}
	}
	for _, stmt := range stmts {
		if _, err := g.store.Execute(stmt); err != nil {
			log.Printf("database import failed on statement: %v", err)
			return err
		}
	}
	return nil
}

// sqlLiteral renders one value the way the dump format specifies: strings
// single-quoted with embedded quotes doubled, nil as NULL, booleans as
// TRUE/FALSE.
func sqlLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(t), "'", "''") + "'"
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + t.UTC().Format(time.RFC3339Nano) + "'"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// splitStatements cuts a SQL dump into executable statements: comment lines
// dropped, splits on semicolons outside single-quoted strings.
func splitStatements(dump string) []string {
	var stmts []string
	var cur strings.Builder
	inQuote := false

	lines := strings.Split(dump, "\n")
	for _, line := range lines {
		if !inQuote && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case ch == '\'':
				inQuote = !inQuote
				cur.WriteByte(ch)
			case ch == ';' && !inQuote:
				if s := strings.TrimSpace(cur.String()); s != "" {
					stmts = append(stmts, s)
				}
				cur.Reset()
			default:
				cur.WriteByte(ch)
			}
		}
		cur.WriteByte('\n')
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

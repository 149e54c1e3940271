package database

import (
	"fmt"

	"scolarite-backend/models"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Result describes the effect of a mutating statement.
type Result struct {
	RowsAffected int64
}

// Adapter is the statement-based contract every backend exposes. Writes are
// durable before the call returns; reads observe all prior writes from this
// process. Calls before Initialize() fail with ErrNotInitialized.
type Adapter interface {
	Initialize() error
	Execute(query string, args ...any) (Result, error)
	Query(query string, args ...any) ([]Row, error)
	QueryOne(query string, args ...any) (Row, error)
	Close() error
}

// CollectionStore is the whole-collection document capability. The fee store
// and the payment ledger run entirely on top of it, which is what lets them
// work unchanged on the flat backend where Execute/Query are unavailable.
type CollectionStore interface {
	// LoadCollection reads the full collection into dest (a pointer to a
	// slice of the collection's model type), in insertion order.
	LoadCollection(name string, dest any) error
	// ReplaceCollection atomically overwrites the whole collection.
	ReplaceCollection(name string, value any) error
	// SaveDoc upserts a single entity by id.
	SaveDoc(name string, id string, value any) error
	// DeleteDoc removes a single entity by id. Missing ids are not an error.
	DeleteDoc(name string, id string) error
}

// Store is what the rest of the application is handed at startup.
type Store interface {
	Adapter
	CollectionStore
}

// Backend names accepted by Config.Backend.
const (
	BackendSQLite = "sqlite" // embedded file-resident engine
	BackendMemory = "memory" // memory-resident engine + snapshot side-channel
	BackendFlat   = "flat"   // flat JSON documents, no statement interface
)

// Config selects and parameterizes a backend. Chosen once at startup; no
// business logic ever branches on the backend again.
type Config struct {
	Backend      string
	SQLitePath   string // sqlite backend: database file
	SnapshotPath string // memory backend: durable snapshot blob
	DataDir      string // flat backend: document directory
}

// Open builds the configured store. Initialize() must still be called.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendSQLite, BackendMemory:
		return NewSQLStore(cfg), nil
	case BackendFlat:
		return NewFlatStore(cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// collection ties a collection name to its table and model type. The order
// here is the order collections appear in dumps.
type collection struct {
	name     string
	table    string
	newModel func() any // fresh single entity, for deletes
	newSlice func() any // fresh *[]T, for generic loads
}

var collections = []collection{
	{"classes", "classes", func() any { return &models.Class{} }, func() any { return &[]models.Class{} }},
	{"students", "students", func() any { return &models.Student{} }, func() any { return &[]models.Student{} }},
	{"teachers", "teachers", func() any { return &models.Teacher{} }, func() any { return &[]models.Teacher{} }},
	{"schedules", "schedules", func() any { return &models.Schedule{} }, func() any { return &[]models.Schedule{} }},
	{"classSchedules", "class_schedules", func() any { return &models.ClassSchedule{} }, func() any { return &[]models.ClassSchedule{} }},
	{"subjects", "subjects", func() any { return &models.Subject{} }, func() any { return &[]models.Subject{} }},
	{"grades", "grades", func() any { return &models.Grade{} }, func() any { return &[]models.Grade{} }},
	{"attendance", "attendance", func() any { return &models.Attendance{} }, func() any { return &[]models.Attendance{} }},
	{"services", "services", func() any { return &models.Service{} }, func() any { return &[]models.Service{} }},
	{"classFees", "class_fees", func() any { return &models.ClassFeeConfig{} }, func() any { return &[]models.ClassFeeConfig{} }},
	{"payments", "student_payments", func() any { return &models.StudentPayment{} }, func() any { return &[]models.StudentPayment{} }},
	{"teacherPayments", "teacher_payments", func() any { return &models.TeacherPayment{} }, func() any { return &[]models.TeacherPayment{} }},
}

func collectionByName(name string) (collection, bool) {
	for _, c := range collections {
		if c.name == name {
			return c, true
		}
	}
	return collection{}, false
}

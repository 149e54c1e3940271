package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"scolarite-backend/models"
)

// migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns) for every collection model
// - helpful indexes via raw CREATE INDEX IF NOT EXISTS
// Running it twice is a no-op.
func (s *SQLStore) migrate() error {
	if err := s.db.AutoMigrate(
		&models.Class{},
		&models.Student{},
		&models.Teacher{},
		&models.Schedule{},
		&models.ClassSchedule{},
		&models.Subject{},
		&models.Grade{},
		&models.Attendance{},
		&models.Service{},
		&models.ClassFeeConfig{},
		&models.StudentPayment{},
		&models.TeacherPayment{},
		&models.AppSetting{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_student_payments_class_month ON student_payments (class_id, month)`,
		`CREATE INDEX IF NOT EXISTS idx_students_class ON students (class_id)`,
	}
	for _, stmt := range indexes {
		if _, err := s.Execute(stmt); err != nil {
			return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
		}
	}
	return nil
}

// Migrate re-applies schema creation on an initialized store. Safe to call
// any number of times; the flat backend has no schema and is a no-op.
func Migrate(store Store) error {
	s, ok := store.(*SQLStore)
	if !ok {
		return nil
	}
	if !s.initialized {
		return ErrNotInitialized
	}
	return s.migrate()
}

// legacyImportFlag guards the one-time legacy import per installation.
const legacyImportFlag = "legacy_import_done"

// Well-known document names used by the pre-relational flat layout.
var legacyDocs = []string{
	"school-classes",
	"school-students",
	"school-teachers",
	"school-schedules",
	"class-schedules",
	"school-subjects",
	"school-grades",
	"attendance-records",
	"school-services",
	"school-class-fees",
	"school-payments",
}

// ImportLegacyFlat performs the one-time import of legacy flat-document
// state into the relational schema. Guarded by a persisted flag; if the
// guard is bypassed the upserts keep it idempotent (no duplicate rows).
// Failures are logged and returned, never swallowed; silent data loss is
// undetectable otherwise.
func ImportLegacyFlat(store Store, dataDir string) error {
	if sc, ok := store.(interface{ SupportsStatements() bool }); ok && !sc.SupportsStatements() {
		log.Println("legacy import skipped: flat backend reads its documents directly")
		return nil
	}

	row, err := store.QueryOne(`SELECT value FROM app_settings WHERE key = ?`, legacyImportFlag)
	if err != nil {
		return fmt.Errorf("legacy import guard check: %w", err)
	}
	if row != nil && row["value"] == "true" {
		return nil
	}

	for _, name := range legacyDocs {
		if err := importLegacyDoc(store, dataDir, name); err != nil {
			log.Printf("legacy import of %s failed: %v", name, err)
			return err
		}
	}

	if _, err := store.Execute(
		`INSERT OR REPLACE INTO app_settings ("key", value) VALUES (?, ?)`,
		legacyImportFlag, "true",
	); err != nil {
		return fmt.Errorf("persist legacy import guard: %w", err)
	}
	log.Println("legacy flat-storage import completed")
	return nil
}

func importLegacyDoc(store Store, dataDir, name string) error {
	data, err := os.ReadFile(filepath.Join(dataDir, name+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	switch name {
	case "school-classes":
		var rows []models.Class
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO classes (id, name, student_count) VALUES (?, ?, ?)`,
				r.ID, r.Name, r.StudentCount,
			); err != nil {
				return err
			}
		}
	case "school-students":
		var rows []models.Student
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO students (id, auto_id, first_name, last_name, birth_date, birth_place, student_number, parent_phone, gender, class_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.AutoID, r.FirstName, r.LastName, r.BirthDate, r.BirthPlace, r.StudentNumber, r.ParentPhone, r.Gender, r.ClassID,
			); err != nil {
				return err
			}
		}
	case "school-teachers":
		var rows []models.Teacher
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO teachers (id, auto_id, first_name, last_name, email, phone, subject, salary) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.AutoID, r.FirstName, r.LastName, r.Email, r.Phone, r.Subject, r.Salary,
			); err != nil {
				return err
			}
		}
	case "school-schedules":
		var rows []models.Schedule
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO schedules (id, teacher_id, day, start_time, end_time, class_name) VALUES (?, ?, ?, ?, ?, ?)`,
				r.ID, r.TeacherID, r.Day, r.StartTime, r.EndTime, r.ClassName,
			); err != nil {
				return err
			}
		}
	case "class-schedules":
		var rows []models.ClassSchedule
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO class_schedules (id, class_id, teacher_id, subject, day, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.ClassID, r.TeacherID, r.Subject, r.Day, r.StartTime, r.EndTime,
			); err != nil {
				return err
			}
		}
	case "school-subjects":
		var rows []models.Subject
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO subjects (id, class_id, semester, name, coefficient) VALUES (?, ?, ?, ?, ?)`,
				r.ID, r.ClassID, r.Semester, r.Name, r.Coefficient,
			); err != nil {
				return err
			}
		}
	case "school-grades":
		var rows []models.Grade
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO grades (id, student_id, subject_id, type, number, value) VALUES (?, ?, ?, ?, ?, ?)`,
				r.ID, r.StudentID, r.SubjectID, r.Type, r.Number, r.Value,
			); err != nil {
				return err
			}
		}
	case "attendance-records":
		var rows []models.Attendance
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO attendance (id, schedule_slot_id, date, status, student_id, teacher_id, justification) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.ScheduleSlotID, r.Date, r.Status, r.StudentID, r.TeacherID, r.Justification,
			); err != nil {
				return err
			}
		}
	case "school-services":
		var rows []models.Service
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO services (id, name, price, description, is_required) VALUES (?, ?, ?, ?, ?)`,
				r.ID, r.Name, r.Price, r.Description, r.IsRequired,
			); err != nil {
				return err
			}
		}
	case "school-class-fees":
		var rows []models.ClassFeeConfig
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			fees, err := json.Marshal(r.RegistrationFees)
			if err != nil {
				return err
			}
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO class_fees (id, class_id, class_name, monthly_fee, registration_fees) VALUES (?, ?, ?, ?, ?)`,
				r.ID, r.ClassID, r.ClassName, r.MonthlyFee, string(fees),
			); err != nil {
				return err
			}
		}
	case "school-payments":
		var rows []models.StudentPayment
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			services, err := json.Marshal(r.Services)
			if err != nil {
				return err
			}
			extra, err := json.Marshal(r.AdditionalFees)
			if err != nil {
				return err
			}
			if _, err := store.Execute(
				`INSERT OR REPLACE INTO student_payments (id, student_id, month, year, class_id, monthly_fee, services, additional_fees, total_amount, paid_amount, remaining_amount, is_paid, payment_date)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.StudentID, r.Month, r.Year, r.ClassID, r.MonthlyFee, string(services), string(extra),
				r.TotalAmount, r.PaidAmount, r.RemainingAmount, r.IsPaid, r.PaymentDate,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

package models

import "time"

// Scheduling and academic records sit outside the payment core but share the
// same storage, appear in exports, and are restored by the import gateway.

type Schedule struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TeacherID string    `json:"teacherId" gorm:"index;not null"`
	Day       string    `json:"day"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	ClassName string    `json:"className"`
	CreatedAt time.Time `json:"createdAt"`
}

type ClassSchedule struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ClassID   string    `json:"classId" gorm:"index;not null"`
	TeacherID string    `json:"teacherId" gorm:"index;not null"`
	Subject   string    `json:"subject"`
	Day       string    `json:"day"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

type Subject struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	ClassID     string    `json:"classId" gorm:"index;not null"`
	Semester    string    `json:"semester"`
	Name        string    `json:"name" gorm:"not null"`
	Coefficient float64   `json:"coefficient" gorm:"default:1"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Grade struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	StudentID string    `json:"studentId" gorm:"index;not null"`
	SubjectID string    `json:"subjectId" gorm:"index;not null"`
	Type      string    `json:"type"`
	Number    int       `json:"number"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

type Attendance struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	ScheduleSlotID string    `json:"scheduleSlotId"`
	Date           string    `json:"date"`
	Status         string    `json:"status"`
	StudentID      string    `json:"studentId" gorm:"index"`
	TeacherID      string    `json:"teacherId" gorm:"index"`
	Justification  string    `json:"justification"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Attendance) TableName() string { return "attendance" }

// AppSetting is a key/value row for installation-level flags, e.g. the
// one-time legacy import guard.
type AppSetting struct {
	Key   string `json:"key" gorm:"primaryKey;column:key"`
	Value string `json:"value"`
}

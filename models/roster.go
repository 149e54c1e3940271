package models

import "time"

// Class is a roster record consumed read-only by the payment side.
// StudentCount is recomputed from the students collection at read time.
type Class struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	StudentCount int       `json:"studentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Student struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	AutoID        int       `json:"autoId"`
	FirstName     string    `json:"firstName" gorm:"not null"`
	LastName      string    `json:"lastName" gorm:"not null"`
	BirthDate     string    `json:"birthDate"`
	BirthPlace    string    `json:"birthPlace"`
	StudentNumber string    `json:"studentNumber"`
	ParentPhone   string    `json:"parentPhone"`
	Gender        string    `json:"gender"`
	ClassID       string    `json:"classId" gorm:"index;not null"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Teacher struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	AutoID    int       `json:"autoId"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Salary    float64   `json:"salary" gorm:"type:numeric(12,2)"`
	CreatedAt time.Time `json:"createdAt"`
}

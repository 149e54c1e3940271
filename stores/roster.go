package stores

import (
	"sync"

	"scolarite-backend/database"
	"scolarite-backend/models"
)

// RosterStore is the read-only roster collaborator: classes and students are
// managed elsewhere (legacy import, data import) and consumed here as
// immutable inputs for a given call.
type RosterStore struct {
	mu       sync.RWMutex
	store    database.Store
	classes  []models.Class
	students []models.Student
}

func NewRosterStore(store database.Store) *RosterStore {
	return &RosterStore{store: store}
}

func (s *RosterStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	classes := []models.Class{}
	if err := s.store.LoadCollection("classes", &classes); err != nil {
		return err
	}
	students := []models.Student{}
	if err := s.store.LoadCollection("students", &students); err != nil {
		return err
	}
	s.classes = classes
	s.students = students
	return nil
}

// GetClasses lists classes in insertion order, with studentCount recomputed
// from the students collection rather than trusting the stored copy.
func (s *RosterStore) GetClasses() []models.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.classes))
	for _, st := range s.students {
		counts[st.ClassID]++
	}
	out := make([]models.Class, len(s.classes))
	for i, c := range s.classes {
		c.StudentCount = counts[c.ID]
		out[i] = c
	}
	return out
}

// GetStudentsByClass lists a class's students in insertion order.
func (s *RosterStore) GetStudentsByClass(classID string) []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Student{}
	for _, st := range s.students {
		if st.ClassID == classID {
			out = append(out, st)
		}
	}
	return out
}

package stores

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"scolarite-backend/database"
	"scolarite-backend/models"
)

const (
	servicesCollection  = "services"
	classFeesCollection = "classFees"
)

// FeeConfigStore holds the three fee-rule categories: the service catalog,
// per-class monthly fees, and per-class registration fees. Every mutation is
// persisted before the in-memory state is committed, so a storage failure
// leaves nothing half-applied.
type FeeConfigStore struct {
	mu        sync.RWMutex
	store     database.Store
	services  []models.Service
	classFees []models.ClassFeeConfig
}

func NewFeeConfigStore(store database.Store) *FeeConfigStore {
	return &FeeConfigStore{store: store}
}

// Load hydrates the cache from storage. Call once at startup and again
// after a data import.
func (s *FeeConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	services := []models.Service{}
	if err := s.store.LoadCollection(servicesCollection, &services); err != nil {
		return err
	}
	classFees := []models.ClassFeeConfig{}
	if err := s.store.LoadCollection(classFeesCollection, &classFees); err != nil {
		return err
	}
	s.services = services
	s.classFees = classFees
	return nil
}

// AddService appends a catalog service under a fresh id and returns the id.
// Names are not required to be unique.
func (s *FeeConfigStore) AddService(svc models.Service) (string, error) {
	if !validAmount(svc.Price) {
		return "", database.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	svc.ID = uuid.NewString()
	svc.CreatedAt = time.Now()
	if err := s.store.SaveDoc(servicesCollection, svc.ID, &svc); err != nil {
		return "", err
	}
	s.services = append(s.services, svc)
	return svc.ID, nil
}

// ServicePatch carries the updatable service fields; nil means "leave as is".
type ServicePatch struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	IsRequired  *bool    `json:"isRequired"`
}

// UpdateService merges the given fields. Updating an absent id is a no-op,
// not an error.
func (s *FeeConfigStore) UpdateService(id string, patch ServicePatch) error {
	if patch.Price != nil && !validAmount(*patch.Price) {
		return database.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.services {
		if s.services[i].ID != id {
			continue
		}
		upd := s.services[i]
		if patch.Name != nil {
			upd.Name = *patch.Name
		}
		if patch.Price != nil {
			upd.Price = *patch.Price
		}
		if patch.Description != nil {
			upd.Description = *patch.Description
		}
		if patch.IsRequired != nil {
			upd.IsRequired = *patch.IsRequired
		}
		if err := s.store.SaveDoc(servicesCollection, id, &upd); err != nil {
			return err
		}
		s.services[i] = upd
		return nil
	}
	return nil
}

// DeleteService removes a catalog entry. Snapshots already copied into
// payment records keep their name and price.
func (s *FeeConfigStore) DeleteService(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.services {
		if s.services[i].ID != id {
			continue
		}
		if err := s.store.DeleteDoc(servicesCollection, id); err != nil {
			return err
		}
		s.services = append(s.services[:i], s.services[i+1:]...)
		return nil
	}
	return nil
}

// GetService looks a service up in the current catalog.
func (s *FeeConfigStore) GetService(id string) (models.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.services {
		if svc.ID == id {
			return svc, true
		}
	}
	return models.Service{}, false
}

func (s *FeeConfigStore) ListServices() []models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Service, len(s.services))
	copy(out, s.services)
	return out
}

// SetClassMonthlyFee creates the class's fee config if absent (with an
// empty registration-fee list), otherwise overwrites the monthly fee and
// the denormalized class name in place.
func (s *FeeConfigStore) SetClassMonthlyFee(classID, className string, amount float64) error {
	if !validAmount(amount) {
		return database.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.classFees {
		if s.classFees[i].ClassID != classID {
			continue
		}
		upd := s.classFees[i].Clone()
		upd.MonthlyFee = amount
		upd.ClassName = className
		if err := s.store.SaveDoc(classFeesCollection, upd.ID, &upd); err != nil {
			return err
		}
		s.classFees[i] = upd
		return nil
	}

	cf := models.ClassFeeConfig{
		ID:               uuid.NewString(),
		ClassID:          classID,
		ClassName:        className,
		MonthlyFee:       amount,
		RegistrationFees: datatypes.JSONSlice[models.RegistrationFee]{},
		CreatedAt:        time.Now(),
	}
	if err := s.store.SaveDoc(classFeesCollection, cf.ID, &cf); err != nil {
		return err
	}
	s.classFees = append(s.classFees, cf)
	return nil
}

// AddRegistrationFee appends a fee with a fresh id to the class's list and
// returns the id. A class without a fee config is a documented no-op;
// callers must SetClassMonthlyFee first.
func (s *FeeConfigStore) AddRegistrationFee(classID string, fee models.RegistrationFee) (string, error) {
	if !validAmount(fee.Amount) {
		return "", database.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.classFees {
		if s.classFees[i].ClassID != classID {
			continue
		}
		fee.ID = uuid.NewString()
		upd := s.classFees[i].Clone()
		upd.RegistrationFees = append(upd.RegistrationFees, fee)
		if err := s.store.SaveDoc(classFeesCollection, upd.ID, &upd); err != nil {
			return "", err
		}
		s.classFees[i] = upd
		return fee.ID, nil
	}
	return "", nil
}

// RemoveRegistrationFee removes by id; no-op if the class or fee is absent.
func (s *FeeConfigStore) RemoveRegistrationFee(classID, feeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.classFees {
		if s.classFees[i].ClassID != classID {
			continue
		}
		upd := s.classFees[i].Clone()
		kept := upd.RegistrationFees[:0]
		removed := false
		for _, rf := range upd.RegistrationFees {
			if rf.ID == feeID {
				removed = true
				continue
			}
			kept = append(kept, rf)
		}
		if !removed {
			return nil
		}
		upd.RegistrationFees = kept
		if err := s.store.SaveDoc(classFeesCollection, upd.ID, &upd); err != nil {
			return err
		}
		s.classFees[i] = upd
		return nil
	}
	return nil
}

// GetClassFees returns the class's fee config, or ok=false when none exists.
func (s *FeeConfigStore) GetClassFees(classID string) (models.ClassFeeConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cf := range s.classFees {
		if cf.ClassID == classID {
			return cf.Clone(), true
		}
	}
	return models.ClassFeeConfig{}, false
}

func (s *FeeConfigStore) ListClassFees() []models.ClassFeeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ClassFeeConfig, 0, len(s.classFees))
	for _, cf := range s.classFees {
		out = append(out, cf.Clone())
	}
	return out
}

// validAmount rejects negative and non-numeric currency values.
func validAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Package memstore is an in-memory store.Store implementation. It backs
// the test suite and the local development mode that predates a reachable
// database, mirroring the application's original mock-data phase.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
)

// New returns a store.Store backed entirely by process memory.
func New() *store.Store {
	return &store.Store{
		Certificates:    &certificates{records: map[string]models.Certificate{}},
		Courses:         &courses{records: map[string]models.Course{}},
		Roles:           &roles{records: map[string]models.RoleAssignment{}},
		Organizations:   &organizations{records: map[string]models.Organization{}},
		NFTCertificates: &nftCertificates{records: map[string]models.NFTCertificate{}},
	}
}

func newID() string {
	return uuid.New().String()
}

type certificates struct {
	mu      sync.RWMutex
	records map[string]models.Certificate
}

func (s *certificates) Insert(_ context.Context, cert *models.Certificate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cert.ID == "" {
		cert.ID = newID()
	}
	s.records[cert.ID] = *cert
	return cert.ID, nil
}

func (s *certificates) List(_ context.Context) ([]models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Certificate, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c)
	}
	sortByCreatedDesc(out, func(c models.Certificate) time.Time { return c.CreatedAt })
	return out, nil
}

func (s *certificates) Get(_ context.Context, id string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *certificates) ByCertificateID(_ context.Context, certificateID string) (*models.Certificate, error) {
	return s.find(func(c models.Certificate) bool { return c.CertificateID == certificateID })
}

func (s *certificates) ByBlockchainHash(_ context.Context, hash string) (*models.Certificate, error) {
	return s.find(func(c models.Certificate) bool { return c.BlockchainHash == hash })
}

func (s *certificates) find(match func(models.Certificate) bool) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.records {
		if match(c) {
			cc := c
			return &cc, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *certificates) ByCourse(_ context.Context, courseID string) ([]models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Certificate
	for _, c := range s.records {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *certificates) Update(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[cert.ID]; !ok {
		return store.ErrNotFound
	}
	s.records[cert.ID] = *cert
	return nil
}

type courses struct {
	mu      sync.RWMutex
	records map[string]models.Course
}

func (s *courses) Insert(_ context.Context, course *models.Course) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if course.ID == "" {
		course.ID = newID()
	}
	s.records[course.ID] = *course
	return course.ID, nil
}

func (s *courses) List(_ context.Context) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Course, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c)
	}
	sortByCreatedDesc(out, func(c models.Course) time.Time { return c.CreatedAt })
	return out, nil
}

func (s *courses) Get(_ context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *courses) Update(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[course.ID]; !ok {
		return store.ErrNotFound
	}
	s.records[course.ID] = *course
	return nil
}

func (s *courses) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

type roles struct {
	mu      sync.RWMutex
	records map[string]models.RoleAssignment // keyed by wallet address
}

func (s *roles) ByWallet(_ context.Context, walletAddress string) (*models.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[walletAddress]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *roles) Upsert(_ context.Context, assignment *models.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[assignment.WalletAddress]; ok {
		assignment.ID = existing.ID
		assignment.CreatedAt = existing.CreatedAt
	} else if assignment.ID == "" {
		assignment.ID = newID()
	}
	s.records[assignment.WalletAddress] = *assignment
	return nil
}

func (s *roles) List(_ context.Context) ([]models.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RoleAssignment, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sortByCreatedDesc(out, func(r models.RoleAssignment) time.Time { return r.CreatedAt })
	return out, nil
}

type organizations struct {
	mu      sync.RWMutex
	records map[string]models.Organization
}

func (s *organizations) Insert(_ context.Context, org *models.Organization) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org.ID == "" {
		org.ID = newID()
	}
	s.records[org.ID] = *org
	return org.ID, nil
}

func (s *organizations) List(_ context.Context) ([]models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Organization, 0, len(s.records))
	for _, o := range s.records {
		out = append(out, o)
	}
	sortByCreatedDesc(out, func(o models.Organization) time.Time { return o.CreatedAt })
	return out, nil
}

func (s *organizations) ByEmail(_ context.Context, email string) (*models.Organization, error) {
	return s.find(func(o models.Organization) bool { return o.Email == email })
}

func (s *organizations) ByWallet(_ context.Context, walletAddress string) (*models.Organization, error) {
	return s.find(func(o models.Organization) bool { return o.WalletAddress == walletAddress })
}

func (s *organizations) find(match func(models.Organization) bool) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.records {
		if match(o) {
			oo := o
			return &oo, nil
		}
	}
	return nil, store.ErrNotFound
}

type nftCertificates struct {
	mu      sync.RWMutex
	records map[string]models.NFTCertificate
}

func (s *nftCertificates) Insert(_ context.Context, nft *models.NFTCertificate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nft.ID == "" {
		nft.ID = newID()
	}
	s.records[nft.ID] = *nft
	return nft.ID, nil
}

func (s *nftCertificates) List(_ context.Context) ([]models.NFTCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NFTCertificate, 0, len(s.records))
	for _, n := range s.records {
		out = append(out, n)
	}
	sortByCreatedDesc(out, func(n models.NFTCertificate) time.Time { return n.CreatedAt })
	return out, nil
}

func (s *nftCertificates) ByOwner(_ context.Context, ownerID string) ([]models.NFTCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.NFTCertificate
	for _, n := range s.records {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func sortByCreatedDesc[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

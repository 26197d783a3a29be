// Package gormstore implements store.Store on top of a GORM-managed
// Postgres database.
package gormstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
)

// New wraps an initialized *gorm.DB in the store interfaces.
func New(db *gorm.DB) *store.Store {
	return &store.Store{
		Certificates:    &certificates{db: db},
		Courses:         &courses{db: db},
		Roles:           &roles{db: db},
		Organizations:   &organizations{db: db},
		NFTCertificates: &nftCertificates{db: db},
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

type certificates struct {
	db *gorm.DB
}

func (s *certificates) Insert(ctx context.Context, cert *models.Certificate) (string, error) {
	if cert.ID == "" {
		cert.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(cert).Error; err != nil {
		return "", err
	}
	return cert.ID, nil
}

func (s *certificates) List(ctx context.Context) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&certs).Error
	return certs, err
}

func (s *certificates) Get(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (s *certificates) ByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).First(&cert, "certificate_id = ?", certificateID).Error; err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (s *certificates) ByBlockchainHash(ctx context.Context, hash string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).First(&cert, "blockchain_hash = ?", hash).Error; err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (s *certificates) ByCourse(ctx context.Context, courseID string) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&certs).Error
	return certs, err
}

func (s *certificates) Update(ctx context.Context, cert *models.Certificate) error {
	res := s.db.WithContext(ctx).Save(cert)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type courses struct {
	db *gorm.DB
}

func (s *courses) Insert(ctx context.Context, course *models.Course) (string, error) {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return "", err
	}
	return course.ID, nil
}

func (s *courses) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (s *courses) Get(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (s *courses) Update(ctx context.Context, course *models.Course) error {
	return s.db.WithContext(ctx).Save(course).Error
}

func (s *courses) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type roles struct {
	db *gorm.DB
}

func (s *roles) ByWallet(ctx context.Context, walletAddress string) (*models.RoleAssignment, error) {
	var assignment models.RoleAssignment
	if err := s.db.WithContext(ctx).First(&assignment, "wallet_address = ?", walletAddress).Error; err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (s *roles) Upsert(ctx context.Context, assignment *models.RoleAssignment) error {
	var existing models.RoleAssignment
	err := s.db.WithContext(ctx).First(&existing, "wallet_address = ?", assignment.WalletAddress).Error
	switch {
	case err == nil:
		assignment.ID = existing.ID
		assignment.CreatedAt = existing.CreatedAt
		return s.db.WithContext(ctx).Save(assignment).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if assignment.ID == "" {
			assignment.ID = uuid.New().String()
		}
		return s.db.WithContext(ctx).Create(assignment).Error
	default:
		return err
	}
}

func (s *roles) List(ctx context.Context) ([]models.RoleAssignment, error) {
	var assignments []models.RoleAssignment
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}

type organizations struct {
	db *gorm.DB
}

func (s *organizations) Insert(ctx context.Context, org *models.Organization) (string, error) {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(org).Error; err != nil {
		return "", err
	}
	return org.ID, nil
}

func (s *organizations) List(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&orgs).Error
	return orgs, err
}

func (s *organizations) ByEmail(ctx context.Context, email string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

func (s *organizations) ByWallet(ctx context.Context, walletAddress string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, "wallet_address = ?", walletAddress).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

type nftCertificates struct {
	db *gorm.DB
}

func (s *nftCertificates) Insert(ctx context.Context, nft *models.NFTCertificate) (string, error) {
	if nft.ID == "" {
		nft.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(nft).Error; err != nil {
		return "", err
	}
	return nft.ID, nil
}

func (s *nftCertificates) List(ctx context.Context) ([]models.NFTCertificate, error) {
	var nfts []models.NFTCertificate
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&nfts).Error
	return nfts, err
}

func (s *nftCertificates) ByOwner(ctx context.Context, ownerID string) ([]models.NFTCertificate, error) {
	var nfts []models.NFTCertificate
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&nfts).Error
	return nfts, err
}

// Package store defines the document-collection interfaces the services
// persist through. Two implementations exist: gormstore (Postgres) for
// production and memstore for tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
)

// ErrNotFound is returned by every lookup that misses.
var ErrNotFound = errors.New("record not found")

// CertificateStore persists certificate documents. List returns records
// most-recently-created first. Update overwrites the stored record;
// there is no compare-and-set, concurrent writers race last-write-wins.
type CertificateStore interface {
	Insert(ctx context.Context, cert *models.Certificate) (string, error)
	List(ctx context.Context) ([]models.Certificate, error)
	Get(ctx context.Context, id string) (*models.Certificate, error)
	ByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
	ByBlockchainHash(ctx context.Context, hash string) (*models.Certificate, error)
	ByCourse(ctx context.Context, courseID string) ([]models.Certificate, error)
	Update(ctx context.Context, cert *models.Certificate) error
}

type CourseStore interface {
	Insert(ctx context.Context, course *models.Course) (string, error)
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	ByWallet(ctx context.Context, walletAddress string) (*models.RoleAssignment, error)
	Upsert(ctx context.Context, assignment *models.RoleAssignment) error
	List(ctx context.Context) ([]models.RoleAssignment, error)
}

type OrganizationStore interface {
	Insert(ctx context.Context, org *models.Organization) (string, error)
	List(ctx context.Context) ([]models.Organization, error)
	ByEmail(ctx context.Context, email string) (*models.Organization, error)
	ByWallet(ctx context.Context, walletAddress string) (*models.Organization, error)
}

type NFTCertificateStore interface {
	Insert(ctx context.Context, nft *models.NFTCertificate) (string, error)
	List(ctx context.Context) ([]models.NFTCertificate, error)
	ByOwner(ctx context.Context, ownerID string) ([]models.NFTCertificate, error)
}

// Store bundles one implementation of every collection. It is passed
// explicitly to each service; no package-level singleton exists.
type Store struct {
	Certificates    CertificateStore
	Courses         CourseStore
	Roles           RoleStore
	Organizations   OrganizationStore
	NFTCertificates NFTCertificateStore
}

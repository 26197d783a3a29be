package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
)

// CourseService manages the course catalog. Reads are open; writes
// require at least the organization role.
type CourseService struct {
	courses store.CourseStore
	roles   *RoleService
	logger  *zap.Logger
}

func NewCourseService(st *store.Store, roles *RoleService, logger *zap.Logger) *CourseService {
	return &CourseService{
		courses: st.Courses,
		roles:   roles,
		logger:  logger.With(zap.String("service", "course_service")),
	}
}

type CourseInput struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Instructor         string   `json:"instructor"`
	Duration           string   `json:"duration"`
	Level              string   `json:"level"`
	PriceNEAR          string   `json:"priceNEAR"`
	PriceUSD           string   `json:"priceUSD"`
	Image              string   `json:"image"`
	Skills             []string `json:"skills"`
	OrganizationWallet string   `json:"organization_wallet"`
}

func (cs *CourseService) CreateCourse(ctx context.Context, actorWallet string, input *CourseInput) (*models.Course, error) {
	if err := cs.requireOrganization(ctx, actorWallet); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: course title is required", ErrValidation)
	}

	now := time.Now().UTC()
	course := &models.Course{
		Title:              input.Title,
		Description:        input.Description,
		Category:           input.Category,
		Instructor:         input.Instructor,
		Duration:           input.Duration,
		Level:              input.Level,
		PriceNEAR:          input.PriceNEAR,
		PriceUSD:           input.PriceUSD,
		Image:              input.Image,
		Skills:             input.Skills,
		OrganizationWallet: input.OrganizationWallet,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if course.OrganizationWallet == "" {
		course.OrganizationWallet = actorWallet
	}

	if _, err := cs.courses.Insert(ctx, course); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	cs.logger.Info("Course created",
		zap.String("course_id", course.ID),
		zap.String("title", course.Title),
		zap.String("organization", course.OrganizationWallet))
	return course, nil
}

func (cs *CourseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return cs.courses.List(ctx)
}

func (cs *CourseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := cs.courses.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (cs *CourseService) UpdateCourse(ctx context.Context, actorWallet, id string, input *CourseInput) (*models.Course, error) {
	if err := cs.requireOrganization(ctx, actorWallet); err != nil {
		return nil, err
	}

	course, err := cs.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	applyString(&course.Title, input.Title)
	applyString(&course.Description, input.Description)
	applyString(&course.Category, input.Category)
	applyString(&course.Instructor, input.Instructor)
	applyString(&course.Duration, input.Duration)
	applyString(&course.Level, input.Level)
	applyString(&course.PriceNEAR, input.PriceNEAR)
	applyString(&course.PriceUSD, input.PriceUSD)
	applyString(&course.Image, input.Image)
	if len(input.Skills) > 0 {
		course.Skills = input.Skills
	}
	course.UpdatedAt = time.Now().UTC()

	if err := cs.courses.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	cs.logger.Info("Course updated", zap.String("course_id", course.ID))
	return course, nil
}

// DeleteCourse removes a course outright. Unlike certificates, courses
// have no audit requirement and physical deletion is allowed.
func (cs *CourseService) DeleteCourse(ctx context.Context, actorWallet, id string) error {
	if err := cs.requireOrganization(ctx, actorWallet); err != nil {
		return err
	}

	err := cs.courses.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}

	cs.logger.Info("Course deleted", zap.String("course_id", id), zap.String("deleted_by", actorWallet))
	return nil
}

func (cs *CourseService) requireOrganization(ctx context.Context, actorWallet string) error {
	allowed, err := cs.roles.HasAtLeastRole(ctx, actorWallet, models.RoleOrgVerifier)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: course management requires the organization role", ErrNotAuthorized)
	}
	return nil
}

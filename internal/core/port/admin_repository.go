package port

import (
	"context"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
)

// AdminRepository looks up administrator records by external subject id.
type AdminRepository interface {
	FindBySubject(ctx context.Context, subjectID string) (*domain.AdministratorIdentity, error)
}

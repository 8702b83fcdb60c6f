package output

import (
	"context"

	"arrangement/internal/domain/entities"
)

type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID int) (entities.Employee, error)
}

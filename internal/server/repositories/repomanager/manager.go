package repomanager

import (
	"context"
	"database/sql"

	"github.com/Velislav710/TeenBudget-sub001/internal/dbx"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

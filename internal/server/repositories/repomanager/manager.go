package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/activitydash/internal/dbx"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/activity"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Activity(db dbx.DBTX) activity.Repository
}

package registrardb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/peyroll/registrar/pkg/pgutil/migrations"
	"github.com/peyroll/registrar/pkg/registrationstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating companies table...")
		if err := mghelper.CreateSchema(ctx, db, &registrationstore.CompanyDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelUniqueIndexes(ctx, db, &registrationstore.CompanyDao{}, "payroll_contract")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping companies table...")
		return mghelper.DropTables(ctx, db, &registrationstore.CompanyDao{})
	})
}

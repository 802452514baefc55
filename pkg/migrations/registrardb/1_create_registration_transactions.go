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
		log.Println("creating registration_transactions table...")
		if err := mghelper.CreateSchema(ctx, db, &registrationstore.TransactionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &registrationstore.TransactionDao{}, "requester", "status", "tx_hash")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping registration_transactions table...")
		return mghelper.DropTables(ctx, db, &registrationstore.TransactionDao{})
	})
}

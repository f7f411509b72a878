// Package database handles catalog database connections.
//
// It provides a wrapper around GORM to configure the connection to the local
// game catalog. The catalog normally lives in a sqlite file next to the
// application, but a MySQL server can be used instead via the Driver setting.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database

// Package database owns the SQLite connection behind the canonical fleet
// model: companies, applications, device profiles, devices, networks, and
// the origin mappings that tie local records to their remote counterparts.
//
// The store expects:
//   - WAL mode, so pull and push reconcilers can read while the API writes
//   - STRICT tables for type safety
//   - A busy timeout instead of immediate lock errors
//   - Parameterised statements throughout (no SQL injection surface)
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive-only: new columns must be NULLABLE or carry a
// DEFAULT, and columns are never dropped or renamed. Each migration ships
// both .up.sql and .down.sql files, registered via the migrations package.
package database

// Package regress runs dialect regression suites against a live database.
//
// A Suite groups scenarios that only make sense for one dialect; its guard
// is matched against the dialect name before anything runs. Each scenario
// force-syncs the tables it needs, so scenarios are independent of each
// other and of earlier runs. Scenarios drop and recreate real tables:
// never point them at a shared database.
//
// Suites run either under go test through RunTests or standalone through
// a Runner, which is what the regress command uses.
package regress

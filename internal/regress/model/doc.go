// Package model holds the fixture models of the dialect regression suites
// together with their generated query code. Each model maps to the exact
// table name its regression used, via TableName.
package model

//go:generate go run github.com/ormkit/ormgen gen --source=user.go
//go:generate go run github.com/ormkit/ormgen gen --source=text.go
//go:generate go run github.com/ormkit/ormgen gen --source=record.go

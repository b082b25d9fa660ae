// Package models holds the GORM persistence models of the invoicing store.
//
// Models mirror the tables created by the SQL migrations. Conversion to and
// from domain types lives in the persistence package, which is the only place
// raw rows are normalized into domain values.
package models

// Package models contains GORM persistence models. They are kept apart from the
// domain entities so the domain layer stays free of ORM tags; repositories convert
// between the two with ToDomain / FromDomain.
package models

package storage

import "database/sql"

// NullString converts a nullable column to an optional string
func NullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// TopicsOrEmpty returns topics, or an empty slice when it is nil
func TopicsOrEmpty(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}

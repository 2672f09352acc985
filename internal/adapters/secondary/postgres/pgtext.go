package postgres

import "github.com/jackc/pgx/v5/pgtype"

// nullText converts an optional value to pgtype.Text. A nil pointer is NULL.
func nullText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// textPtr converts pgtype.Text back to an optional value. NULL becomes nil.
func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

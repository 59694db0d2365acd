package postgres

import (
	"database/sql"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func encodeJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// decodeJSON leaves v untouched for empty or SQL NULL documents.
func decodeJSON(raw []byte, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return sonic.Unmarshal(raw, v)
}

package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"optideliver/internal/adapters/out/postgres/pgerr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "time_slots_available_check"}

	assert.True(t, pgerr.IsUniqueViolation(unique))
	assert.True(t, pgerr.IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, pgerr.IsUniqueViolation(fk))

	assert.True(t, pgerr.IsForeignKeyViolation(fk))
	assert.False(t, pgerr.IsForeignKeyViolation(errors.New("23503")))

	assert.True(t, pgerr.IsCheckViolation(check, ""))
	assert.True(t, pgerr.IsCheckViolation(check, "time_slots_available_check"))
	assert.False(t, pgerr.IsCheckViolation(check, "time_slots_window_check"))
	assert.False(t, pgerr.IsCheckViolation(nil, ""))
}

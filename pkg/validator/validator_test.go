package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string `validate:"required"`
	Count int64  `validate:"gte=0"`
}

type payload struct {
	Backend string `validate:"oneof=postgrest postgres"`
	Rows    []row  `validate:"dive"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(payload{Backend: "postgres", Rows: []row{{ID: "a", Count: 1}}}))
}

func TestValidate_NestedFieldNames(t *testing.T) {
	err := Validate(payload{Backend: "mysql", Rows: []row{{ID: "a"}, {ID: "b", Count: -1}}})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be one of: postgrest postgres", fields["Backend"])
	assert.Equal(t, "must be greater than or equal to 0", fields["Rows[1].Count"])
}

func TestValidateEach(t *testing.T) {
	assert.NoError(t, ValidateEach([]row{{ID: "x"}}))
	assert.NoError(t, ValidateEach([]row(nil)))

	err := ValidateEach([]row{{ID: "x"}, {Count: 2}})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["[1].ID"])
	assert.Contains(t, err.Error(), "field '[1].ID' is required")
}

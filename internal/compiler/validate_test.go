package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evalledger/internal/space"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  space.Definition
		want []string
	}{
		{
			name: "valid float",
			def:  space.Definition{Name: "x", Type: space.KindFloat, Lower: 0, Upper: 1},
			want: []string{},
		},
		{
			name: "unknown type",
			def:  space.Definition{Name: "x", Type: "ordinal"},
			want: []string{ErrUnknownKind},
		},
		{
			name: "inverted bounds",
			def:  space.Definition{Name: "x", Type: space.KindFloat, Lower: 2, Upper: 1},
			want: []string{ErrInvertedBounds},
		},
		{
			name: "fractional int bounds",
			def:  space.Definition{Name: "x", Type: space.KindInt, Lower: 0.5, Upper: 3},
			want: []string{ErrInvertedBounds},
		},
		{
			name: "log with zero lower",
			def:  space.Definition{Name: "x", Type: space.KindFloat, Lower: 0, Upper: 1, Log: true},
			want: []string{ErrLogBounds},
		},
		{
			name: "default out of range",
			def:  space.Definition{Name: "x", Type: space.KindInt, Lower: 1, Upper: 3, Default: int64(9)},
			want: []string{ErrDefaultOutOfRange},
		},
		{
			name: "no choices",
			def:  space.Definition{Name: "x", Type: space.KindCategorical},
			want: []string{ErrNoChoices},
		},
		{
			name: "duplicate choice and bad default",
			def: space.Definition{
				Name: "x", Type: space.KindCategorical,
				Choices: []string{"a", "b", "a"}, Default: "c",
			},
			want: []string{ErrDuplicateChoice, ErrDefaultNotChoice},
		},
		{
			name: "constant without value",
			def:  space.Definition{Name: "x", Type: space.KindConstant},
			want: []string{ErrMissingValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate([]space.Definition{tt.def})
			assert.Equal(t, tt.want, codes(errs))
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	errs := Validate([]space.Definition{
		{Name: "a", Type: space.KindFloat, Lower: 1, Upper: 0},
		{Name: "a", Type: space.KindConstant, Value: "x"},
		{Name: "", Type: space.KindCategorical, Choices: []string{"only"}},
	})

	assert.Equal(t, []string{ErrInvertedBounds, ErrDuplicateHyperparam, ErrEmptyName}, codes(errs))
	assert.Equal(t, "space.a", errs[0].Field)
}

func TestValidateStudy(t *testing.T) {
	study, err := CompileStudy(compileString(t, `
objectives: ["error", "error"]
reference_point: [1, 2, 3]
space: {
	lr: {type: "float", lower: 1, upper: 0}
}
`))
	require.NoError(t, err)

	errs := Validate(study)
	assert.Equal(t, []string{ErrInvertedBounds, ErrDuplicateObjective, ErrReferencePointArity}, codes(errs))
	assert.Equal(t, 5, errs[0].Line)
	assert.Equal(t, "objectives[1]", errs[1].Field)
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate(42)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedType, errs[0].Code)
}

func TestValidationErrorFormat(t *testing.T) {
	withLine := ValidationError{Field: "space.lr", Message: "bad", Code: ErrLogBounds, Line: 3}
	assert.Equal(t, "[E103] line 3: space.lr: bad", withLine.Error())

	noLine := ValidationError{Field: "reference_point", Message: "bad", Code: ErrReferencePointArity}
	assert.Equal(t, "[E110] reference_point: bad", noLine.Error())
}

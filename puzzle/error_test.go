package puzzle

import (
	"encoding/json"
	"testing"
)

// Make sure error messages never panic and are never empty.  The
// testing of individual cases (and removal of unused errors) we
// leave to the functional testing done of other files.
func TestErrorNoPanicNoEmpty(t *testing.T) {
	defer (func() {
		if e := recover(); e != nil {
			t.Fatalf("Panic during testing: %v", e)
		}
	})()
	for sc := int(UnknownScope); sc <= int(MaxScope); sc++ {
		for co := int(UnknownCondition); co < int(MaxCondition); co++ {
			e := Error{
				Scope:     ErrorScope(sc),
				Condition: ErrorCondition(co),
			}
			m := e.Error()
			t.Log(m)
			if len(m) == 0 {
				t.Errorf("Empty error message for %+v", e)
			}
		}
	}
}

type errorMessageTestcase struct {
	err      Error
	expected string
}

func TestErrorMessages(t *testing.T) {
	tcs := []errorMessageTestcase{
		{Error{Scope: ArgumentScope, Condition: RangeCondition,
			Values: ErrorData{"Value", 1, 9}},
			"Invalid argument: Value must be between 1 and 9"},
		{Error{Scope: CellScope, Condition: OccupiedCondition,
			Values: ErrorData{40, 5}},
			"Problem in cell 40: Already assigned value 5"},
		{Error{Scope: CellScope, Condition: ConflictCondition,
			Values: ErrorData{40}},
			"Problem in cell 40: No solution is possible"},
		{Error{Scope: PuzzleScope, Condition: ConflictCondition},
			"Problem in puzzle: No solution is possible"},
		{Error{Scope: RequestScope, Condition: DecodeCondition,
			Values: ErrorData{"unexpected end of JSON input"}},
			"Invalid request: Request body is not valid JSON " +
				"(unexpected end of JSON input)"},
		{Error{Scope: InternalScope, Condition: EncodeCondition,
			Values: ErrorData{"boom"}},
			"Internal logic error: Response failed to encode (boom)"},
		{Error{Scope: ArgumentScope, Condition: GeneralCondition,
			Values: ErrorData{"grid has 80 cells, need 81"}},
			"Invalid argument: grid has 80 cells, need 81"},
		{Error{Scope: ArgumentScope, Condition: RangeCondition},
			"Invalid argument: <unknown> must be between <unknown> and <unknown>"},
		{Error{Message: "custom"}, "custom"},
		{Error{}, "Unknown error: Supplemental data is []"},
	}
	for i, tc := range tcs {
		if m := tc.err.Error(); m != tc.expected {
			t.Errorf("test %d: message %q, expected %q", i+1, m, tc.expected)
		}
	}
}

func TestErrorJSON(t *testing.T) {
	e := Error{
		Scope:     CellScope,
		Condition: OccupiedCondition,
		Values:    ErrorData{40, 5},
	}
	e.Message = e.Error()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Failed to encode error: %v", err)
	}
	expected := `{"scope":3,"condition":3,"values":[40,5],` +
		`"message":"Problem in cell 40: Already assigned value 5"}`
	if string(b) != expected {
		t.Errorf("Error encoded as %v, expected %v", string(b), expected)
	}
	var decoded Error
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if decoded.Scope != e.Scope || decoded.Condition != e.Condition ||
		decoded.Error() != e.Error() {
		t.Errorf("Decoded error %+v differs from %+v", decoded, e)
	}

	b, err = json.Marshal(Error{Scope: PuzzleScope, Condition: ConflictCondition})
	if err != nil {
		t.Fatalf("Failed to encode error: %v", err)
	}
	if expected := `{"scope":4,"condition":4}`; string(b) != expected {
		t.Errorf("Error encoded as %v, expected %v", string(b), expected)
	}
}

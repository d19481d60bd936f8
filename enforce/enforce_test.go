package enforce

import (
	"errors"
	"testing"
)

func TestEnforceTruePasses(t *testing.T) {
	ENFORCE(true, "should not panic")
	ENFORCE(error(nil), "nil error should not panic")
}

func TestEnforceFalsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ENFORCE(false) did not panic")
		}
	}()
	ENFORCE(false, "expected panic")
}

func TestEnforceErrorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ENFORCE(err) did not panic")
		}
	}()
	ENFORCE(errors.New("boom"), "expected panic")
}

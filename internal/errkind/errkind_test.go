package errkind

import "testing"

func TestScriptFailureKindString(t *testing.T) {
	tests := []struct {
		kind ScriptFailureKind
		want string
	}{
		{DivideByZero, "DivideByZero"},
		{UnknownOpcode, "UnknownOpcode"},
		{UnknownProperty, "UnknownProperty"},
		{TypeMismatch, "TypeMismatch"},
		{BudgetExhausted, "BudgetExhausted"},
		{StackUnderflow, "StackUnderflow"},
		{OutOfRegisters, "OutOfRegisters"},
		{ScriptFailureKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestScriptFailureError(t *testing.T) {
	err := &ScriptFailure{ScriptID: 7, PC: 12, Kind: DivideByZero}
	want := "script 7 failed at pc 12: DivideByZero"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigInvalidError(t *testing.T) {
	err := &ConfigInvalid{Reason: "behavior references unknown action id"}
	want := "config invalid: behavior references unknown action id"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestResourceExhaustedError(t *testing.T) {
	err := &ResourceExhausted{What: "spawns"}
	if got := err.Error(); got != "resource exhausted: spawns" {
		t.Errorf("Error() = %q", got)
	}
}

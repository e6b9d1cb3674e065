package autosetup

import (
	"errors"
	"testing"
)

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	if m.State() != StateIdle {
		t.Fatalf("initial state want idle got %s", m.State())
	}

	if err := m.Apply(EventAuthReady); err != nil {
		t.Fatalf("auth ready failed: %v", err)
	}
	if m.State() != StateChecking {
		t.Fatalf("state want checking got %s", m.State())
	}

	if err := m.BeginRegistration(); err != nil {
		t.Fatalf("begin registration failed: %v", err)
	}
	if m.State() != StateRegistering {
		t.Fatalf("state want registering got %s", m.State())
	}

	if err := m.Apply(EventRegistrationResult); err != nil {
		t.Fatalf("registration result failed: %v", err)
	}
	if !m.Done() {
		t.Fatalf("machine should be done")
	}
}

func TestMachineShortCircuitWhenChecked(t *testing.T) {
	m := NewMachine()
	if err := m.Apply(EventAuthReady); err != nil {
		t.Fatalf("auth ready failed: %v", err)
	}
	if err := m.FinishChecked(); err != nil {
		t.Fatalf("finish checked failed: %v", err)
	}
	if !m.Done() {
		t.Fatalf("machine should be done after checked profile")
	}
}

func TestMachineRejectsInvalidTransitions(t *testing.T) {
	m := NewMachine()
	if err := m.Apply(EventRegistrationResult); err == nil {
		t.Fatalf("idle should reject registration result")
	}
	if err := m.BeginRegistration(); err == nil {
		t.Fatalf("idle should reject begin registration")
	}
	if err := m.FinishChecked(); err == nil {
		t.Fatalf("idle should reject finish checked")
	}

	if err := m.Apply(EventAuthReady); err != nil {
		t.Fatalf("auth ready failed: %v", err)
	}
	if err := m.Apply(EventAuthReady); err == nil {
		t.Fatalf("checking should reject repeated auth ready")
	}
}

func TestMachineDoneIsAbsorbing(t *testing.T) {
	m := NewMachine()
	if err := m.Apply(EventAuthReady); err != nil {
		t.Fatalf("auth ready failed: %v", err)
	}
	if err := m.FinishChecked(); err != nil {
		t.Fatalf("finish checked failed: %v", err)
	}

	if err := m.Apply(EventAuthReady); !errors.Is(err, ErrMachineDone) {
		t.Fatalf("done apply want ErrMachineDone got %v", err)
	}
	if err := m.BeginRegistration(); !errors.Is(err, ErrMachineDone) {
		t.Fatalf("done begin want ErrMachineDone got %v", err)
	}
	if err := m.FinishChecked(); !errors.Is(err, ErrMachineDone) {
		t.Fatalf("done finish want ErrMachineDone got %v", err)
	}
	if m.State() != StateDone {
		t.Fatalf("state want done got %s", m.State())
	}
}

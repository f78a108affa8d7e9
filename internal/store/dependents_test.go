package store

import (
	"errors"
	"testing"
)

func TestAddDependentAndList(t *testing.T) {
	s := newTestStore(t)

	acct, err := s.InsertAccount(&Account{Email: "parent@example.com", Name: "Parent", Password: "pw"})
	if err != nil {
		t.Fatalf("InsertAccount failed: %v", err)
	}

	d1, err := s.AddDependent(&Dependent{Name: "Aarav", Relation: "Son", Age: 2, Gender: "male"}, acct.ID)
	if err != nil {
		t.Fatalf("AddDependent failed: %v", err)
	}
	if d1.ID == 0 || d1.OwnerAccountID == nil || *d1.OwnerAccountID != acct.ID {
		t.Fatalf("Unexpected dependent: %+v", d1)
	}
	if _, err := s.AddDependent(&Dependent{Name: "Diya", Relation: "Daughter", Age: 5}, acct.ID); err != nil {
		t.Fatalf("AddDependent failed: %v", err)
	}

	list, err := s.DependentsByAccount(acct.ID)
	if err != nil {
		t.Fatalf("DependentsByAccount failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 dependents, got %d", len(list))
	}
	if list[0].Name != "Aarav" || list[1].Name != "Diya" {
		t.Errorf("Unexpected order: %s, %s", list[0].Name, list[1].Name)
	}

	// Another account sees nothing.
	other, err := s.InsertAccount(&Account{Email: "other@example.com", Name: "Other", Password: "pw"})
	if err != nil {
		t.Fatalf("InsertAccount failed: %v", err)
	}
	list, err = s.DependentsByAccount(other.ID)
	if err != nil {
		t.Fatalf("DependentsByAccount failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no dependents for other account, got %d", len(list))
	}
}

func TestAddDependentValidation(t *testing.T) {
	s := newTestStore(t)

	var ve *ValidationError
	if _, err := s.AddDependent(&Dependent{Name: ""}, 1); !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError for missing name, got %v", err)
	}
	if _, err := s.AddDependent(&Dependent{Name: "Kid"}, 0); !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError for missing owner, got %v", err)
	}
}

package store

import (
	"testing"
)

func TestReportLifecycle(t *testing.T) {
	s := newTestStore(t)

	acct, err := s.InsertAccount(&Account{Email: "parent@example.com", Name: "Parent", Password: "pw"})
	if err != nil {
		t.Fatalf("InsertAccount failed: %v", err)
	}
	dep, err := s.AddDependent(&Dependent{Name: "Child", Age: 6}, acct.ID)
	if err != nil {
		t.Fatalf("AddDependent failed: %v", err)
	}

	created, err := s.AddReport(&Report{
		PatientID:   dep.ID,
		PatientName: dep.Name,
		Description: "Post-vaccination checkup",
		Findings: ReportFindings{
			Diagnosis: "Mild fever",
			Treatment: "Paracetamol",
			Notes:     "Re-check in 48 hours",
		},
		AuthorID:   acct.ID,
		AuthorKind: ActorAccount,
		Image:      []byte{0x89, 0x50, 0x4e, 0x47},
	})
	if err != nil {
		t.Fatalf("AddReport failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected non-zero report id")
	}

	byPatient, err := s.ReportsByPatient(dep.ID)
	if err != nil {
		t.Fatalf("ReportsByPatient failed: %v", err)
	}
	if len(byPatient) != 1 {
		t.Fatalf("Expected 1 report, got %d", len(byPatient))
	}
	got := byPatient[0]
	if got.Findings.Diagnosis != "Mild fever" || got.Findings.Treatment != "Paracetamol" {
		t.Errorf("Findings did not survive the round trip: %+v", got.Findings)
	}
	if len(got.Image) != 4 {
		t.Errorf("Image blob mismatch: %v", got.Image)
	}

	byAuthor, err := s.ReportsByAuthor(acct.ID, ActorAccount)
	if err != nil {
		t.Fatalf("ReportsByAuthor failed: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].ID != created.ID {
		t.Errorf("ReportsByAuthor mismatch: %+v", byAuthor)
	}

	// Wrong author kind matches nothing.
	byAuthor, err = s.ReportsByAuthor(acct.ID, ActorFacility)
	if err != nil {
		t.Fatalf("ReportsByAuthor(facility) failed: %v", err)
	}
	if len(byAuthor) != 0 {
		t.Errorf("Expected no facility-authored reports, got %d", len(byAuthor))
	}

	ok, err := s.DeleteReport(created.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteReport failed: %v, ok=%v", err, ok)
	}
	ok, err = s.DeleteReport(created.ID)
	if err != nil {
		t.Fatalf("Second DeleteReport errored: %v", err)
	}
	if ok {
		t.Error("Second delete of the same id should report no row")
	}
}

func TestReportsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	reports := []*Report{
		{PatientID: 7, Description: "first", CreatedAt: 1000},
		{PatientID: 7, Description: "second", CreatedAt: 2000},
		{PatientID: 7, Description: "third", CreatedAt: 3000},
	}
	for _, r := range reports {
		if _, err := s.AddReport(r); err != nil {
			t.Fatalf("AddReport(%s) failed: %v", r.Description, err)
		}
	}

	got, err := s.ReportsByPatient(7)
	if err != nil {
		t.Fatalf("ReportsByPatient failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(got))
	}
	for i, want := range []string{"third", "second", "first"} {
		if got[i].Description != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, got[i].Description)
		}
	}
}

package console

import (
	"errors"
	"testing"

	"soutenancecore/pkg/domain"
)

func defence(id, date, classroomID string) domain.Defence {
	d := domain.Defence{DefenceRecord: domain.DefenceRecord{Base: domain.Base{ID: id}, Date: date}}
	if classroomID != "" {
		d.ClassroomID = &classroomID
	}
	return d
}

func TestApplyFilterSubsetLaw(t *testing.T) {
	loaded := []domain.Defence{
		defence("d1", "2025-06-10", "c1"),
		defence("d2", "2025-06-10T14:00:00Z", "c2"),
		defence("d3", "2025-06-11", "c1"),
		defence("d4", "2025-06-11 09:30", ""),
		defence("d5", "", "c2"),
	}
	dates := []string{"", "2025-06-10", "2025-06-11", "2025-07-01"}
	classrooms := []string{"", "c1", "c2", "c9"}

	for _, date := range dates {
		for _, classroom := range classrooms {
			f := DefenceFilter{Date: date, ClassroomID: classroom}
			got := ApplyFilter(loaded, f)

			var want []string
			for _, d := range loaded {
				dateOK := date == "" || (len(d.Date) >= 10 && d.Date[:10] == date) || d.Date == date
				classOK := classroom == "" || (d.ClassroomID != nil && *d.ClassroomID == classroom)
				if dateOK && classOK {
					want = append(want, d.ID)
				}
			}
			if len(got) != len(want) {
				t.Fatalf("filter %+v: expected %v, got %d items", f, want, len(got))
			}
			for i := range got {
				if got[i].ID != want[i] {
					t.Fatalf("filter %+v: expected %v in order, got %s at %d", f, want, got[i].ID, i)
				}
			}
		}
	}
}

func TestApplyFilterNeverNil(t *testing.T) {
	if got := ApplyFilter(nil, DefenceFilter{Date: "2025-01-01"}); got == nil {
		t.Fatalf("expected empty non-nil slice")
	}
}

func TestFilterActive(t *testing.T) {
	if (DefenceFilter{}).Active() {
		t.Fatalf("empty filter must be inactive")
	}
	if !(DefenceFilter{ClassroomID: "c1"}).Active() {
		t.Fatalf("classroom clause must activate filter")
	}
}

func TestParseDefenceFilter(t *testing.T) {
	f, err := ParseDefenceFilter(" 2025-06-10 ", "c1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Date != "2025-06-10" || f.ClassroomID != "c1" {
		t.Fatalf("unexpected filter %+v", f)
	}
	_, err = ParseDefenceFilter("10/06/2025", "")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["date"] == "" {
		t.Fatalf("expected date validation error, got %v", err)
	}
	if f, err := ParseDefenceFilter("", ""); err != nil || f.Active() {
		t.Fatalf("expected inactive filter, got %+v %v", f, err)
	}
}

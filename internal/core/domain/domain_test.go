package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		err  bool
	}{
		{"ADMIN", RoleAdmin, false},
		{" care_seeker ", RoleCareSeeker, false},
		{"Caregiver", RoleCaregiver, false},
		{"NURSE", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseRole(tc.in)
		if tc.err {
			if !errors.Is(err, ErrUnknownRole) {
				t.Fatalf("ParseRole(%q): expected ErrUnknownRole, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, %v", tc.in, got, err)
		}
	}
	if RoleCareSeeker.Home() != "/careseeker" || Role("x").Home() != "/login" {
		t.Fatal("unexpected home routes")
	}
}

func TestCareseekerProfile_Equal(t *testing.T) {
	a := CareseekerProfile{FirstName: " Ann", CareTypes: []string{"Pet Care", "Child Care"}}
	b := CareseekerProfile{FirstName: "Ann", CareTypes: []string{"Child Care", "Pet Care"}}
	if !a.Equal(b) {
		t.Fatal("normalized profiles differ")
	}

	b.ToggleCareType("Elderly Care")
	if a.Equal(b) {
		t.Fatal("added care type not detected")
	}
	b.ToggleCareType("Elderly Care")
	if !a.Equal(b) {
		t.Fatal("toggling back left the profile different")
	}
	if !(CareseekerProfile{}).Equal(CareseekerProfile{CareTypes: []string{}}) {
		t.Fatal("nil and empty care types differ")
	}
}

func TestFeedback_Stars(t *testing.T) {
	rated := 3.6
	tests := []struct {
		name string
		f    Feedback
		want int
	}{
		{"computed wins", Feedback{Quality: 1, Support: 1, ComputedRating: &rated}, 4},
		{"mean", Feedback{Quality: 5, Support: 4}, 5},
		{"quality only", Feedback{Quality: 2}, 2},
		{"unrated", Feedback{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Stars(); got != tc.want {
				t.Fatalf("Stars() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFeedbackSummary_Without(t *testing.T) {
	s := NewFeedbackSummary()
	s.Total = 4
	s.ByStars[5] = 3
	s.ByStars[2] = 1

	out := s.Without(Feedback{Quality: 5, Support: 5})
	if out.Total != 3 || out.ByStars[5] != 2 {
		t.Fatalf("summary = %+v", out)
	}
	if s.ByStars[5] != 3 {
		t.Fatal("original summary modified")
	}
	if p := out.Percent(2); p < 33.3 || p > 33.4 {
		t.Fatalf("Percent(2) = %v", p)
	}
	if (FeedbackSummary{}).Percent(1) != 0 {
		t.Fatal("empty summary percent")
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]int, 23)
	for i := range rows {
		rows[i] = i
	}
	p := Paginate(rows, 3, PageSize)
	if p.Pages != 3 || len(p.Items) != 3 || p.Items[0] != 20 {
		t.Fatalf("page = %+v", p)
	}
	if empty := Paginate([]int(nil), 0, 0); empty.Page != 1 || empty.Pages != 1 || len(empty.Items) != 0 {
		t.Fatalf("empty page = %+v", empty)
	}
}

func TestUserMessage(t *testing.T) {
	if msg := UserMessage(&AuthError{Op: "save", Err: ErrSessionExpired}); msg != MsgSessionExpired {
		t.Fatalf("auth message = %q", msg)
	}
	if msg := UserMessage(&NetworkError{Op: "save", Err: errors.New("timeout")}); msg != MsgSaveFailed {
		t.Fatalf("network message = %q", msg)
	}
}

package phase_test

import (
	"errors"
	"testing"

	"sagra/internal/domain/phase"
)

// TestParseDurationDays tests extraction of the nominal day count.
func TestParseDurationDays(t *testing.T) {
	tests := []struct {
		name    string
		period  string
		want    int
		wantErr bool
	}{
		{name: "first phase range", period: "1 a 14 dias", want: 14},
		{name: "second phase range", period: "15 a 28 dias", want: 28},
		{name: "fifth phase range", period: "181 a 240 dias", want: 240},
		{name: "discharge marker", period: "após 240 dias", want: 240},
		{name: "english range", period: "1 to 14 days", want: 14},
		{name: "english discharge", period: "after 240 days", want: 240},
		{name: "surrounding whitespace", period: "  29 a 90 dias ", want: 90},
		{name: "single count", period: "14 dias", want: 14},
		{name: "repeated separator", period: "1 a 14 a 20 dias", want: 14},
		{name: "empty", period: "", wantErr: true},
		{name: "marker without count", period: "após", wantErr: true},
		{name: "marker with word", period: "após muitos dias", wantErr: true},
		{name: "range without upper bound", period: "1 a dias", wantErr: true},
		{name: "zero days", period: "0 a 0 dias", wantErr: true},
		{name: "no digits", period: "contínuo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := phase.ParseDurationDays(tt.period)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDurationDays(%q) = %d, want error", tt.period, got)
				}
				var pe *phase.ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("error %v is not a *ParseError", err)
				}
				if pe.Period != tt.period {
					t.Errorf("ParseError.Period = %q, want %q", pe.Period, tt.period)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDurationDays(%q) unexpected error: %v", tt.period, err)
			}
			if got != tt.want {
				t.Errorf("ParseDurationDays(%q) = %d, want %d", tt.period, got, tt.want)
			}
		})
	}
}

// TestDefinitionValidation tests validation of Definition.
func TestDefinitionValidation(t *testing.T) {
	valid := phase.Definition{
		Position:     1,
		Name:         "Fase 1",
		ApproxPeriod: "1 a 14 dias",
		PhysicalPrep: "Leg Press (Progressão),Bicicleta (Completo)",
		RugbySkills:  "Tackle:1,Passe:2",
	}

	tests := []struct {
		name    string
		mutate  func(d *phase.Definition)
		wantErr error
	}{
		{name: "valid", mutate: func(d *phase.Definition) {}},
		{name: "empty name", mutate: func(d *phase.Definition) { d.Name = " " }, wantErr: phase.ErrEmptyName},
		{name: "empty period", mutate: func(d *phase.Definition) { d.ApproxPeriod = "" }, wantErr: phase.ErrEmptyPeriod},
		{name: "zero position", mutate: func(d *phase.Definition) { d.Position = 0 }, wantErr: phase.ErrInvalidPosition},
		{name: "unknown status", mutate: func(d *phase.Definition) { d.PhysicalPrep = "Corrida (Talvez)" }, wantErr: phase.ErrInvalidStatus},
		{name: "malformed skill", mutate: func(d *phase.Definition) { d.RugbySkills = "Tackle" }, wantErr: phase.ErrInvalidSkill},
		{name: "non-numeric level", mutate: func(d *phase.Definition) { d.RugbySkills = "Tackle:alto" }, wantErr: phase.ErrInvalidSkill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestDefinitionValidation_BadPeriodIsParseError verifies period failures surface as *ParseError.
func TestDefinitionValidation_BadPeriodIsParseError(t *testing.T) {
	d := phase.Definition{Position: 1, Name: "Fase 9", ApproxPeriod: "alguns dias"}
	var pe *phase.ParseError
	if err := d.Validate(); !errors.As(err, &pe) {
		t.Fatalf("Validate() error = %v, want *ParseError", err)
	}
}

// TestPhysicalPrepList tests parsing of exercise status tags.
func TestPhysicalPrepList(t *testing.T) {
	d := phase.Definition{PhysicalPrep: "Leg Press (Progressão), Agachamento (Restrição),Bicicleta (Completo),Alongamento"}
	got := d.PhysicalPrepList()
	want := []phase.Exercise{
		{Name: "Leg Press", Status: phase.StatusProgression},
		{Name: "Agachamento", Status: phase.StatusRestricted},
		{Name: "Bicicleta", Status: phase.StatusComplete},
		{Name: "Alongamento", Status: phase.StatusNone},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestRugbySkillList tests parsing of skill levels.
func TestRugbySkillList(t *testing.T) {
	d := phase.Definition{RugbySkills: "Tackle:2, Passe:3,Treino em campo:1"}
	got, err := d.RugbySkillList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []phase.SkillLevel{{"Tackle", 2}, {"Passe", 3}, {"Treino em campo", 1}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestStatusCounts tests tallying of exercise statuses.
func TestStatusCounts(t *testing.T) {
	d := phase.Definition{PhysicalPrep: "Leg Press (Progressão),Agachamento (Restrição),Bicicleta (Completo),Corrida (Progressão),Alongamento"}
	counts := d.StatusCounts()
	if counts[phase.StatusProgression] != 2 {
		t.Errorf("progression = %d, want 2", counts[phase.StatusProgression])
	}
	if counts[phase.StatusRestricted] != 1 {
		t.Errorf("restricted = %d, want 1", counts[phase.StatusRestricted])
	}
	if counts[phase.StatusComplete] != 1 {
		t.Errorf("complete = %d, want 1", counts[phase.StatusComplete])
	}
}

// TestHasSpecificTests tests the "-" placeholder.
func TestHasSpecificTests(t *testing.T) {
	if (&phase.Definition{SpecificTests: phase.NoTests}).HasSpecificTests() {
		t.Error("placeholder should mean no tests")
	}
	if !(&phase.Definition{SpecificTests: "Y-Balance Test"}).HasSpecificTests() {
		t.Error("listed test should count")
	}
}

// TestDefaultCatalog verifies the seed protocol is ordered and valid.
func TestDefaultCatalog(t *testing.T) {
	catalog := phase.DefaultCatalog()
	if len(catalog) != 6 {
		t.Fatalf("len = %d, want 6", len(catalog))
	}
	if !catalog[0].IsFirst() {
		t.Errorf("first entry = %q, want %q", catalog[0].Name, phase.FirstPhaseName)
	}
	if !catalog[len(catalog)-1].IsDischarge() {
		t.Errorf("last entry = %q, want %q", catalog[len(catalog)-1].Name, phase.DischargePhaseName)
	}
	for i, d := range catalog {
		if d.Position != i+1 {
			t.Errorf("%s position = %d, want %d", d.Name, d.Position, i+1)
		}
		if err := d.Validate(); err != nil {
			t.Errorf("%s invalid: %v", d.Name, err)
		}
	}
}

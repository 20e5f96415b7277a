package domain

import (
	"math"
	"math/cmplx"
	"testing"
)

func griddedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

// TestInferMinor_ConstantAdmittance checks that a flat admittance is reproduced for every minor.
func TestInferMinor_ConstantAdmittance(t *testing.T) {
	y := cmplx.Rect(0.8, Deg2Rad(-35))
	names := []string{"Q1", "O1", "K1", "N2", "M2", "S2", "K2"}
	majors := make(map[string]complex128, len(names))
	for _, n := range names {
		c, _ := Lookup(n)
		majors[n] = y * complex(c.EquilibriumAmp, 0)
	}

	partials := InferMinor(majors, griddedSet(names...))
	if len(partials) != 19 {
		t.Fatalf("expected 19 inferred waves, got %d", len(partials))
	}
	for _, p := range partials {
		want := y * complex(p.Wave.EquilibriumAmp, 0)
		if cmplx.Abs(p.Z-want) > 1e-12 {
			t.Errorf("%s: expected %v, got %v", p.Wave.Name, want, p.Z)
		}
	}
}

// TestPlanAdmittance_Brackets checks the bracketing majors and weights.
func TestPlanAdmittance_Brackets(t *testing.T) {
	plan := PlanAdmittance(griddedSet("Q1", "O1", "K1", "M2"))

	byName := make(map[string]Admittance, len(plan))
	for _, ad := range plan {
		byName[ad.Minor.Name] = ad
	}

	rho1 := byName["Rho1"]
	if rho1.Lower == nil || rho1.Lower.Name != "Q1" || rho1.Upper == nil || rho1.Upper.Name != "O1" {
		t.Fatalf("Rho1: unexpected brackets %+v", rho1)
	}
	q1, _ := Lookup("Q1")
	o1, _ := Lookup("O1")
	wantW := (rho1.Minor.SpeedDegPerHr() - q1.SpeedDegPerHr()) / (o1.SpeedDegPerHr() - q1.SpeedDegPerHr())
	if math.Abs(rho1.Weight-wantW) > 1e-12 {
		t.Errorf("Rho1 weight: expected %v, got %v", wantW, rho1.Weight)
	}

	if q2 := byName["2Q1"]; q2.Lower != nil || q2.Upper == nil || q2.Upper.Name != "Q1" {
		t.Errorf("2Q1: expected only Q1 above, got %+v", q2)
	}
	if j1 := byName["J1"]; j1.Lower == nil || j1.Lower.Name != "K1" || j1.Upper != nil {
		t.Errorf("J1: expected only K1 below, got %+v", j1)
	}

	// Only M2 is gridded in the semi-diurnal band.
	if nu2 := byName["Nu2"]; nu2.Lower != nil || nu2.Upper == nil || nu2.Upper.Name != "M2" {
		t.Errorf("Nu2: expected M2 above, got %+v", nu2)
	}
}

// TestPlanAdmittance_SkipsGriddedAndOrphans checks gridded minors and species without majors are left out.
func TestPlanAdmittance_SkipsGriddedAndOrphans(t *testing.T) {
	plan := PlanAdmittance(griddedSet("M2", "S2", "Nu2"))
	for _, ad := range plan {
		if ad.Minor.Name == "Nu2" {
			t.Error("gridded Nu2 must not be inferred")
		}
		if ad.Minor.Species() == 1 {
			t.Errorf("diurnal %s inferred without diurnal majors", ad.Minor.Name)
		}
	}
}

// TestInfer_UndefinedBrackets checks the fallbacks when majors are undefined at the point.
func TestInfer_UndefinedBrackets(t *testing.T) {
	plan := PlanAdmittance(griddedSet("Q1", "O1", "K1"))
	var rho1 Admittance
	for _, ad := range plan {
		if ad.Minor.Name == "Rho1" {
			rho1 = ad
		}
	}

	zq := complex(0.02, -0.01)
	got, ok := rho1.Infer(zq, true, 0, false)
	if !ok {
		t.Fatal("expected a value from the lower bracket alone")
	}
	want := zq / complex(rho1.Lower.EquilibriumAmp, 0) * complex(rho1.Minor.EquilibriumAmp, 0)
	if cmplx.Abs(got-want) > 1e-15 {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, ok := rho1.Infer(0, false, 0, false); ok {
		t.Error("expected undefined when both brackets are undefined")
	}

	if partials := InferMinor(map[string]complex128{}, griddedSet("Q1", "O1", "K1")); len(partials) != 0 {
		t.Errorf("expected no inferred waves, got %d", len(partials))
	}
}

package momentum

import "testing"

func baseInputs() Inputs {
	return Inputs{
		Symbol: "X",
		Close: 100, High52: 100, Low52: 60,
		Vol20d: 1.0, Vol20dAvg: 1.0,
		SMA20: 95, SMA50: 90, SMA200: 80,
		Slope20: 0.002, Slope50: 0.001, Slope200: 0.0005,
		Return1M: 0.10, Return3M: 0.15, Return6M: 0.20,
		NiftyReturn1M: 0.02, NiftyReturn3M: 0.03, NiftyReturn6M: 0.03,
		Acceleration: 0.9,
		StockVol30: 1.0, NiftyVol30: 1.0,
	}
}

func TestEvaluate_AllFiltersPass(t *testing.T) {
	s := Evaluate(baseInputs())
	if !s.Qualifies {
		t.Fatalf("expected qualifies=true, got filters_passed=%d", s.FiltersPassed)
	}
	if s.FiltersPassed != 5 {
		t.Errorf("filters_passed = %d, want 5", s.FiltersPassed)
	}
}

func TestEvaluate_ProximityBoundary(t *testing.T) {
	// proximity exactly 0.90 -> passes.
	in := baseInputs()
	in.Close = in.Low52 + 0.90*(in.High52-in.Low52)
	s := Evaluate(in)
	if !s.Pass2A {
		t.Errorf("proximity exactly 0.90 should pass 2A")
	}

	// 0.899 with no surge -> fails.
	in2 := baseInputs()
	in2.Close = in2.Low52 + 0.899*(in2.High52-in2.Low52)
	in2.Vol20dAvg = 1.0
	in2.Vol20d = 1.0 // no surge
	s2 := Evaluate(in2)
	if s2.Pass2A {
		t.Errorf("proximity 0.899 without surge should fail 2A")
	}
}

func TestEvaluate_ProximitySecondaryCondition(t *testing.T) {
	in := baseInputs()
	in.Close = in.Low52 + 0.82*(in.High52-in.Low52) // proximity 0.82 >= 0.80
	in.Vol20d = 2.0
	in.Vol20dAvg = 1.0 // surge = 2.0x >= 1.5x
	s := Evaluate(in)
	if !s.Pass2A {
		t.Errorf("proximity >=0.80 with 1.5x surge should pass 2A")
	}
}

func TestEvaluate_InsufficientFilters(t *testing.T) {
	in := baseInputs()
	in.Close = 70 // kills proximity and MA alignment
	in.SMA20, in.SMA50, in.SMA200 = 95, 90, 80
	in.Return1M, in.Return3M, in.Return6M = 0, 0, 0
	s := Evaluate(in)
	if s.Qualifies {
		t.Errorf("expected qualifies=false with degraded inputs, got filters_passed=%d", s.FiltersPassed)
	}
}

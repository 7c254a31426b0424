package shaders

import "testing"

func TestEveryPhaseBodyIsNonEmpty(t *testing.T) {
	phases := map[string]string{
		"ApplyCommandsWGSL":        ApplyCommandsWGSL,
		"TemperatureDiffusionWGSL": TemperatureDiffusionWGSL,
		"IntentDeclarationWGSL":    IntentDeclarationWGSL,
		"ResolveExecuteWGSL":       ResolveExecuteWGSL,
		"StatsReductionWGSL":       StatsReductionWGSL,
		"StatsOccupancyWGSL":       StatsOccupancyWGSL,
	}
	for name, body := range phases {
		if body == "" {
			t.Fatalf("%s is empty", name)
		}
	}
}

func TestWithParamsPrependsSharedHelpers(t *testing.T) {
	got := withParams("fn main() {}")
	if len(got) <= len("fn main() {}") {
		t.Fatal("expected withParams to prepend the shared params/helpers block")
	}
	if got[len(got)-len("fn main() {}"):] != "fn main() {}" {
		t.Fatal("expected the phase body to be preserved verbatim at the end")
	}
}

func TestEveryPhaseSharesTheSameParamsPrefix(t *testing.T) {
	for _, body := range []string{ApplyCommandsWGSL, TemperatureDiffusionWGSL, IntentDeclarationWGSL, ResolveExecuteWGSL, StatsReductionWGSL, StatsOccupancyWGSL} {
		if len(body) < len(paramsInc) || body[:len(paramsInc)] != paramsInc {
			t.Fatal("expected every phase to start with the shared params.wgsl.inc content")
		}
	}
}

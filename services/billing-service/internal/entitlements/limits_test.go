package entitlements

import "testing"

func TestLimitsForTier(t *testing.T) {
	free := LimitsForTier("free")
	if free.Tier != "free" || free.MaxStaff != 1 || free.MaxServices != 5 || free.MaxMonthlyAppointments != 50 {
		t.Fatalf("unexpected free limits: %+v", free)
	}

	solo := LimitsForTier("solo")
	if solo.MaxStaff != 1 || solo.MaxMonthlyAppointments != 300 {
		t.Fatalf("unexpected solo limits: %+v", solo)
	}

	studio := LimitsForTier("studio")
	if studio.MaxStaff != 10 || studio.MaxServices != 60 {
		t.Fatalf("unexpected studio limits: %+v", studio)
	}

	franchise := LimitsForTier("franchise")
	if franchise.MaxMonthlyAppointments != 20000 {
		t.Fatalf("unexpected franchise limits: %+v", franchise)
	}

	// Unknown tiers degrade to free rather than failing.
	if got := LimitsForTier("enterprise"); got.Tier != "free" {
		t.Fatalf("unknown tier should map to free, got %+v", got)
	}
}

func TestKnownTier(t *testing.T) {
	for _, tier := range []string{"free", "solo", "studio", "franchise"} {
		if !KnownTier(tier) {
			t.Fatalf("expected %q to be known", tier)
		}
	}
	if KnownTier("pro") || KnownTier("") {
		t.Fatal("unexpected tier accepted")
	}
}

package entitlements

// Limits represents the entitlements derived from a subscription tier.
// Keep this small and stable: other services rely on these limits to enforce behavior.
type Limits struct {
	Tier                   string `json:"tier"`
	MaxStaff               int32  `json:"max_staff"`
	MaxServices            int32  `json:"max_services"`
	MaxMonthlyAppointments int32  `json:"max_monthly_appointments"`
}

func LimitsForTier(tier string) Limits {
	switch tier {
	case "solo":
		return Limits{
			Tier:                   "solo",
			MaxStaff:               1,
			MaxServices:            15,
			MaxMonthlyAppointments: 300,
		}
	case "studio":
		return Limits{
			Tier:                   "studio",
			MaxStaff:               10,
			MaxServices:            60,
			MaxMonthlyAppointments: 2000,
		}
	case "franchise":
		return Limits{
			Tier:                   "franchise",
			MaxStaff:               50,
			MaxServices:            300,
			MaxMonthlyAppointments: 20000,
		}
	default:
		return Limits{
			Tier:                   "free",
			MaxStaff:               1,
			MaxServices:            5,
			MaxMonthlyAppointments: 50,
		}
	}
}

// KnownTier reports whether tier maps to a purchasable plan.
func KnownTier(tier string) bool {
	switch tier {
	case "free", "solo", "studio", "franchise":
		return true
	}
	return false
}

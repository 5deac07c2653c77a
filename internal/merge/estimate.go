package merge

import (
	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/model"
)

// Profile selects how missing milestones are derived from known ones.
type Profile string

// Estimation profiles. ProfileCopyLastDay is the vendor convention where
// software maintenance and vulnerability support both run until the last
// day of support instead of fixed offsets from end-of-sale.
const (
	ProfileStandard    Profile = "standard"
	ProfileCopyLastDay Profile = "copy-last-day"
)

// ProfileFromName maps a registry profile name to a Profile; unknown or
// empty names get the standard profile.
func ProfileFromName(name string) Profile {
	if name == string(ProfileCopyLastDay) {
		return ProfileCopyLastDay
	}
	return ProfileStandard
}

// Standard-profile offsets from end-of-sale, in years.
const (
	maintenanceOffsetYears   = 2
	vulnerabilityOffsetYears = 3
	supportOffsetYears       = 5
)

// Estimate fills milestone gaps after all real pages are exhausted. Only
// still-null fields are written, every filled field is marked estimated,
// and values copied under the vendor profile additionally carry the Copied
// flag so scoring treats them as a known convention. Input is not mutated.
func Estimate(m model.Milestones, profile Profile) model.Milestones {
	out := m.Clone()
	if out == nil {
		out = model.Milestones{}
	}

	eos, hasEos := out[model.FieldEndOfSale]
	ldos, hasLdos := out[model.FieldLastDayOfSupport]

	switch {
	case hasEos && !hasLdos:
		ldos = model.MilestoneValue{Date: eos.Date.AddYears(supportOffsetYears), Estimated: true}
		out[model.FieldLastDayOfSupport] = ldos
		hasLdos = true
	case hasLdos && !hasEos:
		eos = model.MilestoneValue{Date: ldos.Date.AddYears(-supportOffsetYears), Estimated: true}
		out[model.FieldEndOfSale] = eos
		hasEos = true
	}

	if !hasEos {
		// Nothing to anchor estimation on.
		return out
	}

	switch profile {
	case ProfileCopyLastDay:
		if hasLdos {
			copied := model.MilestoneValue{Date: ldos.Date, Estimated: true, Copied: true}
			out.SetIfAbsent(model.FieldEndOfSwMaintenance, copied)
			out.SetIfAbsent(model.FieldEndOfSwVulnerability, copied)
		}
	default:
		out.SetIfAbsent(model.FieldEndOfSwMaintenance, model.MilestoneValue{
			Date: eos.Date.AddYears(maintenanceOffsetYears), Estimated: true,
		})
		out.SetIfAbsent(model.FieldEndOfSwVulnerability, model.MilestoneValue{
			Date: eos.Date.AddYears(vulnerabilityOffsetYears), Estimated: true,
		})
	}

	if est := estimatedCount(out) - estimatedCount(m); est > 0 {
		zap.L().Debug("merge: estimated milestone fields",
			zap.Int("filled", est),
			zap.String("profile", string(profile)),
		)
	}
	return out
}

func estimatedCount(m model.Milestones) int {
	n := 0
	for _, v := range m {
		if v.Estimated {
			n++
		}
	}
	return n
}

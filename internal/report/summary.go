// Package report builds the transparent summary of a document check:
// plain counts plus diagnostic signals whose data always contains the
// numbers the verdict derives from. The summary never alters per-claim
// outcomes.
package report

import (
	"fmt"

	"github.com/docattest/claimcheck/internal/model"
)

// Summarize computes the summary for a set of claim outcomes.
func Summarize(outcomes []model.ClaimOutcome) model.Summary {
	summary := model.Summary{
		Total:      len(outcomes),
		Rejections: make(map[string]int),
	}

	rejectionKinds := make(map[string]int)
	for _, o := range outcomes {
		switch {
		case o.Rejection != "":
			summary.Rejected++
			kind := o.RejectionKind
			if kind == "" {
				kind = "other"
			}
			rejectionKinds[kind]++
		case o.Result != nil && o.Result.Verified:
			summary.Verified++
		default:
			summary.Unverified++
		}
	}
	summary.Rejections = rejectionKinds

	accepted := summary.Total - summary.Rejected
	if accepted > 0 {
		summary.MatchRate = float64(summary.Verified) / float64(accepted)
	}

	summary.Signals = buildSignals(summary)
	return summary
}

// buildSignals derives diagnostic signals from the counts.
func buildSignals(s model.Summary) []model.Signal {
	if s.Total == 0 {
		return []model.Signal{{
			Type:        model.SignalNoClaims,
			Severity:    model.SeverityWarning,
			Description: "No claims were submitted for this document",
			Data: map[string]interface{}{
				"total": 0,
			},
		}}
	}

	var signals []model.Signal

	if s.Rejected == 0 && s.Unverified == 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalAllVerified,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("All %d claims verified", s.Verified),
			Data: map[string]interface{}{
				"total":    s.Total,
				"verified": s.Verified,
			},
		})
	}

	if s.Unverified > 0 {
		severity := model.SeverityWarning
		if s.Verified == 0 {
			severity = model.SeverityCritical
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalUnverifiedClaims,
			Severity:    severity,
			Description: fmt.Sprintf("%d of %d accepted claims did not match", s.Unverified, s.Total-s.Rejected),
			Data: map[string]interface{}{
				"accepted":   s.Total - s.Rejected,
				"unverified": s.Unverified,
				"match_rate": s.MatchRate,
				"formula":    "verified / (total - rejected)",
			},
		})
	}

	if s.Rejected > 0 {
		severity := model.SeverityWarning
		if s.Rejected == s.Total {
			severity = model.SeverityCritical
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalRejectedClaims,
			Severity:    severity,
			Description: fmt.Sprintf("%d of %d claims rejected at validation", s.Rejected, s.Total),
			Data: map[string]interface{}{
				"total":    s.Total,
				"rejected": s.Rejected,
				"kinds":    s.Rejections,
			},
		})
	}

	return signals
}

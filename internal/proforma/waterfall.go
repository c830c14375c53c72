package proforma

// BuildWaterfall converts the analysis into EBITDA-bridge bar segments:
// a start bar at current EBITDA, one step per opportunity in list order,
// and an end bar drawn from the authoritative stabilized figure (which may
// legitimately differ from the accumulated running total when the
// opportunity list does not account for every adjustment).
//
// Each visible bar is positioned by a transparent spacer so a stacked
// chart anchored at zero renders it floating between the previous and new
// running totals. When a bar must extend below the axis the spacer is
// clamped at zero and NegSpacer carries the below-zero base. Opportunities
// with nil amounts are skipped; zero and negative amounts are rendered —
// the transform supports negative steps even though the calculator never
// currently emits one.
func BuildWaterfall(currentEBITDA float64, opps []OpportunityLineItem, stabilizedEBITDA float64) []WaterfallSegment {
	segments := make([]WaterfallSegment, 0, len(opps)+2)

	segments = append(segments, anchorSegment("Current EBITDA", currentEBITDA, SegmentStart))

	running := currentEBITDA
	for _, opp := range opps {
		if opp.Opportunity == nil {
			continue
		}
		v := *opp.Opportunity
		newTotal := running + v

		seg := WaterfallSegment{
			Label:        opp.Category,
			DisplayValue: v,
			RunningTotal: newTotal,
			Type:         SegmentOpportunity,
			Priority:     opp.Priority,
		}
		if v >= 0 {
			// Rising bar spans running -> newTotal.
			if running >= 0 {
				seg.Spacer = running
			} else {
				seg.NegSpacer = running
			}
			seg.Value = v
		} else {
			// Falling bar spans newTotal -> running.
			if newTotal >= 0 {
				seg.Spacer = newTotal
			} else {
				seg.NegSpacer = newTotal
			}
			seg.Value = -v
		}

		segments = append(segments, seg)
		running = newTotal
	}

	segments = append(segments, anchorSegment("Stabilized EBITDA", stabilizedEBITDA, SegmentEnd))

	return segments
}

// anchorSegment draws a bar from zero: upward for non-negative values,
// hanging below the axis for negative ones.
func anchorSegment(label string, value float64, typ SegmentType) WaterfallSegment {
	seg := WaterfallSegment{
		Label:        label,
		DisplayValue: value,
		RunningTotal: value,
		Type:         typ,
	}
	if value >= 0 {
		seg.Value = value
	} else {
		seg.Spacer = value
		seg.Value = -value
	}
	return seg
}

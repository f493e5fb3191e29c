package canvas

import "strings"

// MaxContextBullets caps the context list. When the cap is exceeded the
// oldest bullets are dropped, keeping the most recent information.
const MaxContextBullets = 20

// Merge folds a delta into a snapshot and returns a new snapshot.
// The input snapshot is never mutated. Merge rules:
//
//   - statement: last-write-wins, an empty delta statement never clears it
//   - context bullets: append-only, deduplicated by exact text, capped
//   - constraints: deduplicated by normalized text; a duplicate arriving
//     with a different type replaces the stored type
//   - criteria: deduplicated by name; the newest weight wins
//   - risks: deduplicated by description; the newest severity wins
func Merge(s State, d Delta) State {
	out := s.Clone()

	if d.Statement != "" {
		out.Statement = d.Statement
	}
	if d.NextAction != "" {
		out.NextAction = d.NextAction
	}

	for _, bullet := range d.ContextBullets {
		if bullet == "" || containsString(out.ContextBullets, bullet) {
			continue
		}
		out.ContextBullets = append(out.ContextBullets, bullet)
	}
	if overflow := len(out.ContextBullets) - MaxContextBullets; overflow > 0 {
		out.ContextBullets = append([]string(nil), out.ContextBullets[overflow:]...)
	}

	for _, c := range d.Constraints {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		key := normalizeText(c.Text)
		replaced := false
		for i, existing := range out.Constraints {
			if normalizeText(existing.Text) == key {
				if c.Type != "" && c.Type != existing.Type {
					out.Constraints[i].Type = c.Type
				}
				replaced = true
				break
			}
		}
		if !replaced {
			if c.Type == "" {
				c.Type = ConstraintHard
			}
			out.Constraints = append(out.Constraints, c)
		}
	}

	for _, cr := range d.Criteria {
		if strings.TrimSpace(cr.Name) == "" {
			continue
		}
		cr.Weight = clampWeight(cr.Weight)
		replaced := false
		for i, existing := range out.Criteria {
			if strings.EqualFold(existing.Name, cr.Name) {
				out.Criteria[i].Weight = cr.Weight
				replaced = true
				break
			}
		}
		if !replaced {
			out.Criteria = append(out.Criteria, cr)
		}
	}

	for _, r := range d.Risks {
		if strings.TrimSpace(r.Description) == "" {
			continue
		}
		replaced := false
		for i, existing := range out.Risks {
			if strings.EqualFold(existing.Description, r.Description) {
				if r.Severity != "" {
					out.Risks[i].Severity = r.Severity
				}
				if r.Mitigation != "" {
					out.Risks[i].Mitigation = r.Mitigation
				}
				replaced = true
				break
			}
		}
		if !replaced {
			if r.Severity == "" {
				r.Severity = SeverityMedium
			}
			out.Risks = append(out.Risks, r)
		}
	}

	return out
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func clampWeight(w int) int {
	if w < 1 {
		return 1
	}
	if w > 10 {
		return 10
	}
	return w
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

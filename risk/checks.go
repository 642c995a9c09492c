package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Reason joins the violation messages for logging.
func (d Decision) Reason() string {
	s := ""
	for i, v := range d.Violations {
		if i > 0 {
			s += "; "
		}
		s += v.Code + ": " + v.Msg
	}
	return s
}

// Evaluate runs every enabled breaker in p against st.
func Evaluate(p Policy, st State) Decision {
	d := Decision{Allowed: true}

	if p.MaxConsecutiveLosses > 0 && st.ConsecutiveLosses >= p.MaxConsecutiveLosses {
		d.add("CONSECUTIVE_LOSSES",
			fmt.Sprintf("%d consecutive losses >= max %d", st.ConsecutiveLosses, p.MaxConsecutiveLosses))
	}

	if p.MaxDailyLossPct > 0 && st.Equity > 0 {
		dayLimit := -p.MaxDailyLossPct * st.Equity
		if st.DayRealized <= dayLimit {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("day realized %.2f <= limit %.2f", st.DayRealized, dayLimit))
		}
	}

	return d
}

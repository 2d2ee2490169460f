package finance

import (
	"fmt"
	"math"
)

// Percent is a ratio in percent, like a progress or a return.
type Percent float64

// Equal compares to a hundredth of a basis point.
func (p Percent) Equal(q Percent) bool { return math.Abs(float64(p-q)) < 0.0001 }

// Round returns p rounded to two decimals.
func (p Percent) Round() Percent { return Percent(math.Round(float64(p)*100) / 100) }

func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString always shows the sign, and "-" for zero.
func (p Percent) SignedString() string {
	if p.Round() == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", float64(p))
}
